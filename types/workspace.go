package types

import "time"

// Workspace is a named tenant boundary grouping users and chats.
type Workspace struct {
	// ID is the unique identifier of the workspace.
	ID int64 `json:"id" db:"id"`

	// Name is the workspace name, unique across the system.
	Name string `json:"name" db:"name"`

	// OwnerID is the id of the user who owns the workspace.
	// Zero means the workspace has no owner yet; the first user
	// provisioned into an unowned workspace is promoted to owner.
	OwnerID int64 `json:"owner_id" db:"owner_id"`

	// CreatedAt is the timestamp when the workspace was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
