package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/patrimonio-app/patrimonio/internal/auth"
	"github.com/patrimonio-app/patrimonio/internal/platform/httpx"
	"github.com/patrimonio-app/patrimonio/internal/rbac"
	"github.com/patrimonio-app/patrimonio/internal/shared"
)

func TestAuthenticate(t *testing.T) {
	repo := newStubRepo()
	repo.add(t, 1, "admin", "correctpass", rbac.RoleAdmin, true)
	repo.add(t, 2, "retired", "correctpass", rbac.RoleViewer, false)
	svc := auth.NewService(repo)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, " admin ", "correctpass")
	require.NoError(t, err)
	require.Equal(t, rbac.RoleAdmin, user.Role)

	_, err = svc.Authenticate(ctx, "admin", "nope")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost", "correctpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "retired", "correctpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

type failingRepo struct{ stubRepo }

func (failingRepo) FindByUsername(context.Context, string) (*auth.User, error) {
	return nil, errors.New("connection reset")
}

func TestAuthenticatePropagatesStoreErrors(t *testing.T) {
	svc := auth.NewService(&failingRepo{})
	_, err := svc.Authenticate(context.Background(), "admin", "correctpass")
	require.Error(t, err)
	require.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestCreateUser(t *testing.T) {
	repo := newStubRepo()
	svc := auth.NewService(repo)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, " viewer ", "longenough", "Viewer")
	require.NoError(t, err)
	require.Equal(t, "viewer", user.Username)
	require.Equal(t, rbac.RoleViewer, user.Role)
	require.True(t, user.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")))

	_, err = svc.CreateUser(ctx, "viewer", "longenough", "viewer")
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateUserValidation(t *testing.T) {
	svc := auth.NewService(newStubRepo())

	_, err := svc.CreateUser(context.Background(), "  ", "short", "root")
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
	require.True(t, verr.Fields.Has("username"))
	require.True(t, verr.Fields.Has("password"))
	require.Equal(t, []string{`"root" is not a valid choice. Must be one of: admin, viewer.`}, verr.Fields["role"])
}

func TestSetRole(t *testing.T) {
	repo := newStubRepo()
	repo.add(t, 7, "maria", "password123", rbac.RoleViewer, true)
	svc := auth.NewService(repo)
	ctx := context.Background()

	user, err := svc.SetRole(ctx, " maria ", "ADMIN")
	require.NoError(t, err)
	require.Equal(t, rbac.RoleAdmin, user.Role)
	require.Equal(t, rbac.RoleAdmin, repo.users["maria"].Role)

	_, err = svc.SetRole(ctx, "maria", "owner")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.SetRole(ctx, "nobody", "viewer")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
