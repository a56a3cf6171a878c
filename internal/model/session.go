package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is an opaque bearer token with sliding expiry. The unique index on
// user_id enforces at most one live session per user.
type Session struct {
	ID        uuid.UUID `json:"session_id" gorm:"type:uuid;primaryKey;column:session_id"`
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
