package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxTextLen is the hard limit on message text length, in characters.
const MaxTextLen = 600

// PrivateMessage is a 1:1 message between two users. A conversation is the
// union of rows where (sender, receiver) matches the pair in either order.
type PrivateMessage struct {
	ID         uuid.UUID `json:"message_id" gorm:"type:uuid;primaryKey;column:message_id"`
	SenderID   uuid.UUID `json:"sender_id" gorm:"type:uuid;index;not null"`
	ReceiverID uuid.UUID `json:"receiver_id" gorm:"type:uuid;index;not null"`
	Text       string    `json:"text,omitempty" gorm:"size:600"`
	ImageKey   string    `json:"image_key,omitempty" gorm:"size:500"`
	SentAt     time.Time `json:"sent_at" gorm:"not null;index"`
}

// StationMessage has the same shape as PrivateMessage but its receiver is a
// station; it is broadcast to all current subscribers.
type StationMessage struct {
	ID        uuid.UUID `json:"message_id" gorm:"type:uuid;primaryKey;column:message_id"`
	SenderID  uuid.UUID `json:"sender_id" gorm:"type:uuid;index;not null"`
	StationID uuid.UUID `json:"receiver_id" gorm:"type:uuid;index;not null;column:station_id"`
	Text      string    `json:"text,omitempty" gorm:"size:600"`
	ImageKey  string    `json:"image_key,omitempty" gorm:"size:500"`
	SentAt    time.Time `json:"sent_at" gorm:"not null;index"`
}

// Unread counts messages a receiver has not yet marked read, partitioned per
// private peer or per station. Exactly one of StationID/SenderID is set.
type Unread struct {
	ID         uint       `json:"-" gorm:"primaryKey;autoIncrement"`
	ReceiverID uuid.UUID  `json:"receiver_id" gorm:"type:uuid;not null;uniqueIndex:idx_unread_station_key,where:sender_id IS NULL;uniqueIndex:idx_unread_sender_key,where:station_id IS NULL"`
	StationID  *uuid.UUID `json:"station_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_unread_station_key,where:sender_id IS NULL"`
	SenderID   *uuid.UUID `json:"sender_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_unread_sender_key,where:station_id IS NULL"`
	Count      int        `json:"count" gorm:"not null;default:0"`
}
