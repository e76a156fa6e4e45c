package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/relaychat/apiserver/types"
)

// WorkspaceRepository handles persistence for workspaces.
//
// A workspace row with owner_id = 0 is unowned; the sentinel is
// interpreted only here and in the provisioning service, never
// exposed as a meaningful user id.
type WorkspaceRepository struct {
	db *sql.DB
}

func NewWorkspaceRepository(db *sql.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id int64) (types.Workspace, error) {
	const query = `
		SELECT id, name, owner_id, created_at
		FROM workspaces
		WHERE id = $1`
	var ws types.Workspace
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ws.ID,
		&ws.Name,
		&ws.OwnerID,
		&ws.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Workspace{}, ErrNotFound
		}
		return types.Workspace{}, err
	}
	return ws, nil
}

func (r *WorkspaceRepository) GetByName(ctx context.Context, name string) (types.Workspace, error) {
	const query = `
		SELECT id, name, owner_id, created_at
		FROM workspaces
		WHERE name = $1`
	var ws types.Workspace
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&ws.ID,
		&ws.Name,
		&ws.OwnerID,
		&ws.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Workspace{}, ErrNotFound
		}
		return types.Workspace{}, err
	}
	return ws, nil
}

// Create inserts a workspace. ownerID 0 creates it unowned. A name
// collision from a concurrent create is reported as
// ErrDuplicateWorkspace.
func (r *WorkspaceRepository) Create(ctx context.Context, name string, ownerID int64) (types.Workspace, error) {
	const query = `
		INSERT INTO workspaces (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, created_at`
	var ws types.Workspace
	err := r.db.QueryRowContext(ctx, query, name, ownerID).Scan(
		&ws.ID,
		&ws.Name,
		&ws.OwnerID,
		&ws.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.Workspace{}, ErrDuplicateWorkspace
		}
		return types.Workspace{}, err
	}
	return ws, nil
}

// UpdateOwner promotes a user to owner of a still-unowned workspace.
// The update only matches when the workspace has no owner yet and the
// user actually belongs to it, so the first successful promotion wins
// and a user can never be promoted into a workspace they are not a
// member of. Returns ErrNotFound when the condition did not match.
func (r *WorkspaceRepository) UpdateOwner(ctx context.Context, wsID, userID int64) (types.Workspace, error) {
	const query = `
		UPDATE workspaces
		SET owner_id = $1
		WHERE id = $2 AND owner_id = 0 AND (SELECT ws_id FROM users WHERE id = $1) = $2
		RETURNING id, name, owner_id, created_at`
	var ws types.Workspace
	err := r.db.QueryRowContext(ctx, query, userID, wsID).Scan(
		&ws.ID,
		&ws.Name,
		&ws.OwnerID,
		&ws.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Workspace{}, ErrNotFound
		}
		return types.Workspace{}, err
	}
	return ws, nil
}

// ListChatUsers returns the password-free membership listing of a
// workspace, in insertion order.
func (r *WorkspaceRepository) ListChatUsers(ctx context.Context, wsID int64) ([]types.ChatUser, error) {
	const query = `
		SELECT id, fullname, email
		FROM users
		WHERE ws_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, wsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.ChatUser, 0)
	for rows.Next() {
		var user types.ChatUser
		if err := rows.Scan(&user.ID, &user.Fullname, &user.Email); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
