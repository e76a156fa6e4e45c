package types

import "time"

// ChatType classifies a chat by membership shape.
type ChatType string

const (
	// ChatTypeSingle is a direct conversation between two users.
	ChatTypeSingle ChatType = "single"

	// ChatTypeGroup is an unnamed conversation between three or more users.
	ChatTypeGroup ChatType = "group"

	// ChatTypePrivateChannel is a named chat visible to its members only.
	ChatTypePrivateChannel ChatType = "private_channel"

	// ChatTypePublicChannel is a named chat open to the whole workspace.
	ChatTypePublicChannel ChatType = "public_channel"
)

// Chat represents a conversation inside a workspace.
type Chat struct {
	// ID is the unique identifier of the chat.
	ID int64 `json:"id" db:"id"`

	// WsID identifies the workspace the chat belongs to.
	WsID int64 `json:"ws_id" db:"ws_id"`

	// Name is the chat name. Empty for single and group chats.
	Name string `json:"name,omitempty" db:"name"`

	// Type is the chat classification derived from name, member
	// count and visibility at creation time.
	Type ChatType `json:"type" db:"type"`

	// Members lists the user ids participating in the chat.
	Members []int64 `json:"members" db:"members"`

	// CreatedAt is the timestamp when the chat was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
