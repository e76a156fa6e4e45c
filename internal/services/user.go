package services

import (
	"context"
	"errors"
	"log"

	"github.com/relaychat/apiserver/internal/auth"
	"github.com/relaychat/apiserver/internal/store"
	"github.com/relaychat/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// WorkspaceRepository defines persistence operations for workspaces.
type WorkspaceRepository interface {
	GetByID(ctx context.Context, id int64) (types.Workspace, error)
	GetByName(ctx context.Context, name string) (types.Workspace, error)
	Create(ctx context.Context, name string, ownerID int64) (types.Workspace, error)
	UpdateOwner(ctx context.Context, wsID, userID int64) (types.Workspace, error)
	ListChatUsers(ctx context.Context, wsID int64) ([]types.ChatUser, error)
}

// CreateUser is the provisioning input for a new account.
type CreateUser struct {
	Fullname  string `json:"fullname"`
	Email     string `json:"email"`
	Workspace string `json:"workspace"`
	Password  string `json:"password"`
}

// UserService provisions accounts and verifies credentials.
type UserService struct {
	users      UserRepository
	workspaces WorkspaceRepository
}

func NewUserService(users UserRepository, workspaces WorkspaceRepository) *UserService {
	return &UserService{users: users, workspaces: workspaces}
}

// Create provisions a user and its workspace. The workspace is
// created unowned when it does not exist yet, and the new user is
// promoted to owner when the workspace had none. The promotion is
// conditional on membership; a miss means another first joiner won
// the race and is silently ignored.
func (s *UserService) Create(ctx context.Context, input CreateUser) (types.User, error) {
	// Fast-path duplicate check. The unique constraint on email is
	// the authoritative guard; Create below maps its violation to the
	// same error.
	_, err := s.users.GetByEmail(ctx, input.Email)
	if err == nil {
		return types.User{}, &EmailExistsError{Email: input.Email}
	}
	if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	ws, err := s.workspaces.GetByName(ctx, input.Workspace)
	if errors.Is(err, store.ErrNotFound) {
		ws, err = s.workspaces.Create(ctx, input.Workspace, 0)
		if errors.Is(err, store.ErrDuplicateWorkspace) {
			return types.User{}, ErrWorkspaceConflict
		}
	}
	if err != nil {
		return types.User{}, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.users.Create(ctx, types.User{
		WsID:         ws.ID,
		Fullname:     input.Fullname,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return types.User{}, &EmailExistsError{Email: input.Email}
		}
		return types.User{}, err
	}

	if ws.OwnerID == 0 {
		if _, err := s.workspaces.UpdateOwner(ctx, ws.ID, user.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("promote owner of workspace %d to user %d: %v", ws.ID, user.ID, err)
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// VerifyCredentials authenticates an email/password pair. Every
// failure mode maps to ErrInvalidCredentials; an absent or malformed
// stored hash verifies as a mismatch, never as a success.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// GetByID loads a user without password material.
func (s *UserService) GetByID(ctx context.Context, id int64) (types.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListWorkspaceUsers returns the membership listing of a workspace in
// insertion order.
func (s *UserService) ListWorkspaceUsers(ctx context.Context, wsID int64) ([]types.ChatUser, error) {
	return s.workspaces.ListChatUsers(ctx, wsID)
}
