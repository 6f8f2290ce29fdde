package models

import "time"

// Message represents a direct message between two users. Rows are append-only;
// only is_read ever changes, and only from false to true.
type Message struct {
	ID         int       `db:"id" json:"id"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	ReceiverID int       `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"message"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MessageView is a Message enriched with sender and receiver display
// attributes for API responses and websocket pushes.
type MessageView struct {
	Message
	Sender   *UserView `json:"sender,omitempty"`
	Receiver *UserView `json:"receiver,omitempty"`
}

// ConversationSummary is the per-counterpart view returned by the
// conversation listing: the latest message between the pair plus unread state
// for the requesting user.
type ConversationSummary struct {
	User            UserView  `json:"user"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	IsRead          bool      `json:"is_read"`
	UnreadCount     int       `json:"unread_count"`
}
