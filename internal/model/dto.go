package model

import (
	"time"

	"github.com/google/uuid"
)

// ========== Auth DTOs ==========

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest accepts email, username or both; email takes precedence when
// it resolves to a user.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      UserPublic `json:"user"`
	SessionID uuid.UUID  `json:"session_id"`
}

// ========== Station DTOs ==========

// LocationRequest carries raw coordinates. The fields are deliberately
// untyped: a string latitude must fail validation with a distinct error, not
// a generic bind failure.
type LocationRequest struct {
	Lat any `json:"lat"`
	Lon any `json:"lon"`
}

// ========== Message DTOs ==========

// AddMessageRequest is the submit-message payload. UserID present means a
// private message to that user; absent means a broadcast to the sender's
// current station.
type AddMessageRequest struct {
	Text     *string `json:"text"`
	ImageKey *string `json:"image_key"`
	UserID   *string `json:"user_id"`
}

// ResetUnreadRequest resets one unread counter to Count. Exactly one of
// StationID/SenderID must be set. Count is untyped so a non-integer value can
// be rejected with a distinct error.
type ResetUnreadRequest struct {
	StationID *string `json:"station_id"`
	SenderID  *string `json:"sender_id"`
	Count     any     `json:"count"`
}

// MessageView is a persisted message enriched with the resolved sender block.
// The raw sender_id is stripped in favor of the sender object.
type MessageView struct {
	MessageID  uuid.UUID  `json:"message_id"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Text       string     `json:"text,omitempty"`
	ImageKey   string     `json:"image_key,omitempty"`
	SentAt     time.Time  `json:"sent_at"`
	Sender     UserPublic `json:"sender"`
}

// ReceiverView identifies the other side of a chat: either a user's public
// profile or a station pseudo-profile.
type ReceiverView struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarKey *string   `json:"avatar_key,omitempty"`
	IsStation bool      `json:"is_station"`
}

// ChatView is one conversation page: the resolved receiver, the requester's
// unread count for it, the total message count for paging, and a page of
// messages in ascending send order.
type ChatView struct {
	Receiver ReceiverView  `json:"receiver"`
	Unread   int           `json:"unread"`
	Total    int64         `json:"total"`
	Messages []MessageView `json:"messages"`
}

// ChatListView is the full chat list: the requester's station chat plus the
// paged private conversations, most recently active first.
type ChatListView struct {
	StationChat  ChatView   `json:"station_chat"`
	PrivateChats []ChatView `json:"private_chats"`
}

// ========== Push DTOs ==========

type PushSubscribeRequest struct {
	Endpoint string    `json:"endpoint"`
	Keys     *PushKeys `json:"keys"`
}

// ========== Upload DTOs ==========

type PresignedUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type UpdateAvatarRequest struct {
	AvatarKey string `json:"avatar_key"`
}

// ========== Live channel DTOs ==========

// Event is the live-channel envelope, both directions.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Live event names.
const (
	EventConnect = "connect"
	EventMessage = "message"
)

// LiveMessage is the payload pushed to online recipients when a message is
// created for them.
type LiveMessage struct {
	IsStation bool `json:"is_station"`
	Unread    int  `json:"unread"`
	MessageView
}

// ========== Common ==========

type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Text       string `json:"text"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
