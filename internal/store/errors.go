package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an insert trips the unique
// constraint on users.email. The constraint is the authoritative
// uniqueness guard; application-level pre-checks are a fast path only.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrDuplicateWorkspace is returned when an insert trips the unique
// constraint on workspaces.name, which happens when two provisioning
// calls race to create the same workspace.
var ErrDuplicateWorkspace = errors.New("workspace name already exists")

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
