package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. The password column always holds a
// bcrypt hash, never plaintext.
type User struct {
	ID        uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey;column:user_id"`
	Username  string    `json:"username" gorm:"size:16;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	AvatarKey *string   `json:"avatar_key,omitempty" gorm:"size:500;uniqueIndex"`
	CreatedAt time.Time `json:"-"`
}

// UserPublic is the safe projection of User used in API responses and as the
// resolved sender block attached to messages.
type UserPublic struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarKey *string   `json:"avatar_key,omitempty"`
}

// ToPublic converts User to its public projection.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarKey: u.AvatarKey,
	}
}
