package services_test

import (
	"context"
	"testing"

	"github.com/relaychat/apiserver/internal/services"
	"github.com/relaychat/apiserver/internal/store"
	"github.com/relaychat/apiserver/internal/testutil"
	"github.com/relaychat/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(fake *testutil.FakeStore) *services.UserService {
	return services.NewUserService(fake.Users(), fake.Workspaces())
}

func TestCreateUserProvisionsWorkspace(t *testing.T) {
	fake := testutil.NewFakeStore()
	svc := newUserService(fake)
	ctx := context.Background()

	user, err := svc.Create(ctx, services.CreateUser{
		Fullname:  "Tyr Chen",
		Email:     "tchen@acme.org",
		Workspace: "none",
		Password:  "hunter42",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "Tyr Chen", user.Fullname)
	assert.Equal(t, "tchen@acme.org", user.Email)
	assert.Empty(t, user.PasswordHash)

	// First joiner of a fresh workspace becomes its owner.
	ws, err := fake.Workspaces().GetByName(ctx, "none")
	require.NoError(t, err)
	assert.Equal(t, user.WsID, ws.ID)
	assert.Equal(t, user.ID, ws.OwnerID)
}

func TestCreateUserJoinsExistingWorkspace(t *testing.T) {
	fake := testutil.NewFakeStore()
	svc := newUserService(fake)
	ctx := context.Background()

	first, err := svc.Create(ctx, services.CreateUser{
		Fullname:  "Tyr Chen",
		Email:     "tchen@acme.org",
		Workspace: "acme",
		Password:  "hunter42",
	})
	require.NoError(t, err)

	second, err := svc.Create(ctx, services.CreateUser{
		Fullname:  "Alice Wang",
		Email:     "alice@acme.org",
		Workspace: "acme",
		Password:  "hunter42",
	})
	require.NoError(t, err)

	assert.Equal(t, first.WsID, second.WsID)

	// Ownership stays with the first joiner.
	ws, err := fake.Workspaces().GetByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, first.ID, ws.OwnerID)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	fake := testutil.NewFakeStore()
	svc := newUserService(fake)
	ctx := context.Background()

	_, err := svc.Create(ctx, services.CreateUser{
		Fullname:  "Tyr Chen",
		Email:     "tchen@acme.org",
		Workspace: "acme",
		Password:  "hunter42",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, services.CreateUser{
		Fullname:  "Impostor",
		Email:     "tchen@acme.org",
		Workspace: "other",
		Password:  "different",
	})
	var exists *services.EmailExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "tchen@acme.org", exists.Email)
	assert.Equal(t, "email tchen@acme.org already exists", exists.Error())
}

// racingWorkspaceRepo simulates another provisioning call creating the
// workspace between the name lookup and the insert.
type racingWorkspaceRepo struct {
	*testutil.FakeWorkspaceRepo
}

func (r *racingWorkspaceRepo) GetByName(ctx context.Context, name string) (types.Workspace, error) {
	return types.Workspace{}, store.ErrNotFound
}

func (r *racingWorkspaceRepo) Create(ctx context.Context, name string, ownerID int64) (types.Workspace, error) {
	return types.Workspace{}, store.ErrDuplicateWorkspace
}

func TestCreateUserWorkspaceCreateRace(t *testing.T) {
	fake := testutil.NewFakeStore()
	svc := services.NewUserService(fake.Users(), &racingWorkspaceRepo{fake.Workspaces()})
	ctx := context.Background()

	_, err := svc.Create(ctx, services.CreateUser{
		Fullname:  "Tyr Chen",
		Email:     "tchen@acme.org",
		Workspace: "acme",
		Password:  "hunter42",
	})
	assert.ErrorIs(t, err, services.ErrWorkspaceConflict)

	// The loser leaves no half-provisioned user behind.
	_, err = fake.Users().GetByEmail(ctx, "tchen@acme.org")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwnerPromotionFirstWriterWins(t *testing.T) {
	fake := testutil.NewFakeStore()
	ctx := context.Background()

	ws, err := fake.Workspaces().Create(ctx, "acme", 0)
	require.NoError(t, err)
	first, err := fake.Users().Create(ctx, types.User{WsID: ws.ID, Fullname: "First", Email: "first@acme.org"})
	require.NoError(t, err)
	second, err := fake.Users().Create(ctx, types.User{WsID: ws.ID, Fullname: "Second", Email: "second@acme.org"})
	require.NoError(t, err)

	promoted, err := fake.Workspaces().UpdateOwner(ctx, ws.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, promoted.OwnerID)

	// A concurrent first-join that also observed owner 0 loses the
	// conditional update and gets a miss, never a second promotion.
	_, err = fake.Workspaces().UpdateOwner(ctx, ws.ID, second.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	ws, err = fake.Workspaces().GetByID(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, ws.OwnerID)
}

func TestVerifyCredentials(t *testing.T) {
	fake := testutil.NewFakeStore()
	svc := newUserService(fake)
	ctx := context.Background()

	created, err := svc.Create(ctx, services.CreateUser{
		Fullname:  "Tyr Chen",
		Email:     "tchen@acme.org",
		Workspace: "acme",
		Password:  "hunter42",
	})
	require.NoError(t, err)

	user, err := svc.VerifyCredentials(ctx, "tchen@acme.org", "hunter42")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestVerifyCredentialsFailureUniformity(t *testing.T) {
	fake := testutil.NewFakeStore()
	svc := newUserService(fake)
	ctx := context.Background()

	_, err := svc.Create(ctx, services.CreateUser{
		Fullname:  "Tyr Chen",
		Email:     "tchen@acme.org",
		Workspace: "acme",
		Password:  "hunter42",
	})
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable.
	_, err = svc.VerifyCredentials(ctx, "nobody@acme.org", "hunter42")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.VerifyCredentials(ctx, "tchen@acme.org", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestListWorkspaceUsers(t *testing.T) {
	fake := testutil.NewFakeStore()
	svc := newUserService(fake)
	ctx := context.Background()

	emails := []string{"a@acme.org", "b@acme.org", "c@acme.org"}
	for i, email := range emails {
		_, err := svc.Create(ctx, services.CreateUser{
			Fullname:  email,
			Email:     email,
			Workspace: "acme",
			Password:  "hunter42",
		})
		require.NoError(t, err, "signup %d", i)
	}

	ws, err := fake.Workspaces().GetByName(ctx, "acme")
	require.NoError(t, err)

	users, err := svc.ListWorkspaceUsers(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i, email := range emails {
		assert.Equal(t, email, users[i].Email)
	}
}
