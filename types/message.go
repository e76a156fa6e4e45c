package types

import "time"

// Message represents a single message posted to a chat.
type Message struct {
	// ID is the unique identifier of the message.
	ID int64 `json:"id" db:"id"`

	// ChatID identifies the chat the message was posted to.
	ChatID int64 `json:"chat_id" db:"chat_id"`

	// SenderID identifies the user who posted the message.
	SenderID int64 `json:"sender_id" db:"sender_id"`

	// Content is the message body.
	Content string `json:"content" db:"content"`

	// Files lists object-storage paths of attachments, if any.
	Files []string `json:"files,omitempty" db:"files"`

	// CreatedAt is the timestamp when the message was posted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
