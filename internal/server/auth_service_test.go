package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(users *memUsers, notifier ResetNotifier) *AuthService {
	tokens := NewJWTService(testJWTConfig(), store.NewMemoryCache())
	return NewAuthService(users, &config.PasswordConfig{BcryptCost: 4}, tokens, notifier, logging.Discard())
}

func requireAuthCode(t *testing.T, err error, code string) {
	t.Helper()
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr), "expected *AuthError, got %T: %v", err, err)
	assert.Equal(t, code, authErr.Code)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	svc := newTestAuth(users, &captureNotifier{})

	resp, err := svc.Register(ctx, types.CreateUserRequest{DisplayName: "Ada", Email: "Ada@Example.com", Password: "analytical-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)

	login, err := svc.Login(ctx, types.LoginRequest{Email: "ada@example.com", Password: "analytical-1"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	me, err := svc.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.DisplayName)
}

func TestAuthService_RegisterErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email", func(t *testing.T) {
		svc := newTestAuth(newMemUsers(), nil)
		_, err := svc.Register(ctx, types.CreateUserRequest{DisplayName: "Ada", Email: "ada@example.com", Password: "analytical-1"})
		require.NoError(t, err)
		_, err = svc.Register(ctx, types.CreateUserRequest{DisplayName: "Ada", Email: "ada@example.com", Password: "analytical-2"})
		requireAuthCode(t, err, CodeEmailInUse)
	})

	t.Run("weak password", func(t *testing.T) {
		svc := newTestAuth(newMemUsers(), nil)
		_, err := svc.Register(ctx, types.CreateUserRequest{DisplayName: "Ada", Email: "ada@example.com", Password: "onlyletters"})
		requireAuthCode(t, err, CodeWeakPassword)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc := newTestAuth(newMemUsers(), nil)
		_, err := svc.Register(ctx, types.CreateUserRequest{DisplayName: "Ada", Email: "not-an-email", Password: "analytical-1"})
		requireAuthCode(t, err, CodeInvalidRequest)
	})

	t.Run("storage failure removes the half-created user", func(t *testing.T) {
		users := newMemUsers()
		users.failAfter = errors.New("connection reset")
		svc := newTestAuth(users, nil)

		_, err := svc.Register(ctx, types.CreateUserRequest{DisplayName: "Ada", Email: "ada@example.com", Password: "analytical-1"})
		requireAuthCode(t, err, CodeInternal)
		assert.NotContains(t, err.Error(), "connection reset")
		assert.Len(t, users.deleted, 1)
		exists, _ := users.CheckEmailExists(ctx, "ada@example.com")
		assert.False(t, exists)
	})
}

func TestAuthService_LoginErrors(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	svc := newTestAuth(users, nil)
	_, err := svc.Register(ctx, types.CreateUserRequest{DisplayName: "Ada", Email: "ada@example.com", Password: "analytical-1"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, types.LoginRequest{Email: "ada@example.com", Password: "wrong-password-1"})
	requireAuthCode(t, wrongPassword, CodeInvalidCredential)

	_, unknown := svc.Login(ctx, types.LoginRequest{Email: "nobody@example.com", Password: "analytical-1"})
	requireAuthCode(t, unknown, CodeInvalidCredential)
	assert.Equal(t, wrongPassword.Error(), unknown.Error())

	users.addIncomplete("pending@example.com")
	_, err = svc.Login(ctx, types.LoginRequest{Email: "pending@example.com", Password: "anything-1"})
	requireAuthCode(t, err, CodeAccountIncomplete)
	assert.Equal(t, CodeAccountIncomplete+": "+accountIncompleteText, err.Error())
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth(newMemUsers(), nil)
	resp, err := svc.Register(ctx, types.CreateUserRequest{DisplayName: "Ada", Email: "ada@example.com", Password: "analytical-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))
	_, err = svc.tokens.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	requireAuthCode(t, svc.Logout(ctx, "garbage"), CodeInvalidToken)
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	notifier := &captureNotifier{}
	svc := newTestAuth(users, notifier)

	id := users.addIncomplete("pending@example.com")

	require.NoError(t, svc.ForgotPassword(ctx, types.ForgotPasswordRequest{Email: "pending@example.com"}))
	token := notifier.token("pending@example.com")
	require.Len(t, token, 64)

	for hash := range users.resets {
		assert.NotEqual(t, token, hash, "raw token must not be stored")
	}

	require.NoError(t, svc.ResetPassword(ctx, types.ResetPasswordRequest{Token: token, NewPassword: "engine-notes-2"}))

	login, err := svc.Login(ctx, types.LoginRequest{Email: "pending@example.com", Password: "engine-notes-2"})
	require.NoError(t, err)
	assert.Equal(t, id, login.User.ID)

	err = svc.ResetPassword(ctx, types.ResetPasswordRequest{Token: token, NewPassword: "engine-notes-3"})
	requireAuthCode(t, err, CodeInvalidResetToken)
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	notifier := &captureNotifier{}
	svc := newTestAuth(newMemUsers(), notifier)

	require.NoError(t, svc.ForgotPassword(context.Background(), types.ForgotPasswordRequest{Email: "ghost@example.com"}))
	assert.Empty(t, notifier.token("ghost@example.com"))
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	notifier := &captureNotifier{}
	svc := newTestAuth(users, notifier)
	users.addIncomplete("pending@example.com")

	start := time.Now()
	svc.now = func() time.Time { return start }
	require.NoError(t, svc.ForgotPassword(ctx, types.ForgotPasswordRequest{Email: "pending@example.com"}))

	svc.now = func() time.Time { return start.Add(DefaultResetTTL + time.Minute) }
	err := svc.ResetPassword(ctx, types.ResetPasswordRequest{Token: notifier.token("pending@example.com"), NewPassword: "engine-notes-2"})
	requireAuthCode(t, err, CodeInvalidResetToken)
}

func TestAuthService_MeUnknownUser(t *testing.T) {
	svc := newTestAuth(newMemUsers(), nil)
	_, err := svc.Me(context.Background(), uuid.New())
	requireAuthCode(t, err, CodeUserNotFound)
}
