package types

import "time"

// User represents an account in the system.
// Every user belongs to exactly one workspace.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// WsID identifies the workspace the user belongs to.
	// It is set once at creation and never changes.
	WsID int64 `json:"ws_id" db:"ws_id"`

	// Fullname is the user's display name.
	Fullname string `json:"fullname" db:"fullname"`

	// Email is the user's email address, unique across all workspaces.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the argon2id hash of the user's password.
	// This field is never exposed in API responses and is only
	// populated on lookup paths that need credential verification.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ChatUser is a password-free projection of User used for
// workspace membership listings.
type ChatUser struct {
	ID       int64  `json:"id" db:"id"`
	Fullname string `json:"fullname" db:"fullname"`
	Email    string `json:"email" db:"email"`
}
