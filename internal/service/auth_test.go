package service

import (
	"context"
	"testing"
	"time"

	"github.com/gatherpoint/gatherpoint/internal/model"
	"github.com/gatherpoint/gatherpoint/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	tokens, err := token.NewService("test-secret", "gatherpoint-test", time.Hour)
	require.NoError(t, err)
	return NewAuthService(newTestStore(t).Users(), tokens)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, model.RegisterRequest{
		Name:     "Ada",
		Email:    "Ada@Example.COM",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email, "email is normalized")
	assert.NotEqual(t, "correct horse", resp.User.PasswordHash, "password stored only as a hash")

	claims, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.Subject)

	login, err := svc.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Name: " ", Email: "a@b.co", Password: "long enough"})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Register(ctx, model.RegisterRequest{Name: "Ada", Email: "not-an-email", Password: "long enough"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Register(ctx, model.RegisterRequest{Name: "Ada", Email: "a@b.co", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	req := model.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Name = "Someone Else"
	_, err = svc.Register(ctx, req)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, model.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable.
	_, err = svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, model.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	user, err := svc.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	_, err = svc.Me(ctx, "missing-user")
	require.ErrorIs(t, err, ErrUserNotFound)
}
