package model

import (
	"time"

	"github.com/google/uuid"
)

// PushSubscription holds one browser/device Web Push registration. The
// endpoint is unique: when the same device subscribes under a different user
// the row is re-owned rather than duplicated.
type PushSubscription struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	Endpoint  string    `json:"endpoint" gorm:"size:1000;uniqueIndex;not null"`
	Auth      string    `json:"-" gorm:"size:255;not null"`
	P256dh    string    `json:"-" gorm:"size:255;not null;column:p256dh"`
	CreatedAt time.Time `json:"-"`
}

// ToResponse returns the wire shape clients expect, with keys nested the way
// the browser Push API serializes them.
func (p *PushSubscription) ToResponse() PushSubscriptionResponse {
	return PushSubscriptionResponse{
		UserID:   p.UserID,
		Endpoint: p.Endpoint,
		Keys: PushKeys{
			Auth:   p.Auth,
			P256dh: p.P256dh,
		},
	}
}

// PushKeys are the client encryption keys of a push subscription.
type PushKeys struct {
	Auth   string `json:"auth"`
	P256dh string `json:"p256dh"`
}

// PushSubscriptionResponse mirrors the browser PushSubscription JSON.
type PushSubscriptionResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Endpoint string    `json:"endpoint"`
	Keys     PushKeys  `json:"keys"`
}
