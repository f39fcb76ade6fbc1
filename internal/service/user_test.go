package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
)

func TestUserService_Register(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()

	user, err := ts.users.Register(ctx, RegisterRequest{
		Email:    "  Ursula@Example.COM ",
		Password: "hunter2",
		Name:     "Ursula",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ursula@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.NotEqual(t, "hunter2", user.PasswordHash)
}

func TestUserService_Register_DuplicateEmailIgnoresCase(t *testing.T) {
	ts := setupServices(t)
	ts.registerUser(t, "reader@example.com")

	_, err := ts.users.Register(context.Background(), RegisterRequest{
		Email:    "READER@example.com",
		Password: "hunter2",
		Name:     "Other",
	})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestUserService_Register_Validation(t *testing.T) {
	ts := setupServices(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "hunter2", Name: "A"}},
		{"bad email", RegisterRequest{Email: "nope", Password: "hunter2", Name: "A"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "abc", Name: "A"}},
		{"missing name", RegisterRequest{Email: "a@example.com", Password: "hunter2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.users.Register(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
		})
	}
}

func TestUserService_CreateSuperuser(t *testing.T) {
	ts := setupServices(t)

	user, err := ts.users.CreateSuperuser(context.Background(), RegisterRequest{
		Email:    "admin@example.com",
		Password: "hunter2",
		Name:     "Admin",
	})
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
}

func TestUserService_IssueTokenAndAuthenticate(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	user := ts.registerUser(t, "reader@example.com")

	resp, err := ts.users.IssueToken(ctx, TokenRequest{Email: "Reader@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	got, err := ts.users.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserService_IssueToken_BadCredentials(t *testing.T) {
	ts := setupServices(t)
	ts.registerUser(t, "reader@example.com")

	tests := []struct {
		name    string
		req     TokenRequest
		wantErr *domainerrors.Error
	}{
		{"wrong password", TokenRequest{Email: "reader@example.com", Password: "wrong"}, domainerrors.ErrInvalidCredentials},
		{"unknown email", TokenRequest{Email: "nobody@example.com", Password: "hunter2"}, domainerrors.ErrInvalidCredentials},
		{"blank password", TokenRequest{Email: "reader@example.com"}, domainerrors.ErrValidation},
		{"blank email", TokenRequest{Password: "hunter2"}, domainerrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.users.IssueToken(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, tt.wantErr))

			var domainErr *domainerrors.Error
			require.True(t, domainerrors.As(err, &domainErr))
			assert.Equal(t, 400, domainErr.HTTPStatus())
		})
	}
}

func TestUserService_InactiveUserIsLockedOut(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	user := ts.registerUser(t, "reader@example.com")

	resp, err := ts.users.IssueToken(ctx, TokenRequest{Email: "reader@example.com", Password: "hunter2"})
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, ts.store.UpdateUser(ctx, user))

	_, err = ts.users.IssueToken(ctx, TokenRequest{Email: "reader@example.com", Password: "hunter2"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = ts.users.Authenticate(ctx, resp.Token)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestUserService_Authenticate_RejectsGarbage(t *testing.T) {
	ts := setupServices(t)

	_, err := ts.users.Authenticate(context.Background(), "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	_, err = ts.users.Authenticate(context.Background(), "v4.local.garbage")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestUserService_UpdateMe(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	user := ts.registerUser(t, "reader@example.com")

	updated, err := ts.users.UpdateMe(ctx, user, UpdateMeRequest{
		Name:     ptrTo("Renamed"),
		Password: ptrTo("new-secret"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "reader@example.com", updated.Email)

	_, err = ts.users.IssueToken(ctx, TokenRequest{Email: "reader@example.com", Password: "hunter2"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = ts.users.IssueToken(ctx, TokenRequest{Email: "reader@example.com", Password: "new-secret"})
	assert.NoError(t, err)
}

func TestUserService_UpdateMe_EmailCollision(t *testing.T) {
	ts := setupServices(t)
	ts.registerUser(t, "taken@example.com")
	user := ts.registerUser(t, "reader@example.com")

	_, err := ts.users.UpdateMe(context.Background(), user, UpdateMeRequest{Email: ptrTo("Taken@example.com")})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestUserService_GetMe_RequiresActor(t *testing.T) {
	ts := setupServices(t)

	_, err := ts.users.GetMe(context.Background(), nil)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}
