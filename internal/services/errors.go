package services

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials covers every signin failure: unknown email,
// wrong password and malformed stored hash. Callers must not be able
// to tell these apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrWorkspaceConflict is returned when two provisioning calls race to
// create the same workspace name. The loser is surfaced as a conflict
// rather than retried, since a retry would re-run the whole sequence.
var ErrWorkspaceConflict = errors.New("workspace created concurrently")

// ErrInvalidChat is returned when a chat's name/member combination is
// not one of the supported chat shapes.
var ErrInvalidChat = errors.New("invalid chat")

// ErrInvalidMessage is returned when a message has neither content
// nor attachments.
var ErrInvalidMessage = errors.New("invalid message")

// EmailExistsError rejects a signup for an email that is already
// registered. Unlike signin failures, the email is safe to reveal at
// signup time.
type EmailExistsError struct {
	Email string
}

func (e *EmailExistsError) Error() string {
	return fmt.Sprintf("email %s already exists", e.Email)
}
