package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/types"
)

// DefaultResetTTL is how long a password reset token stays usable.
const DefaultResetTTL = time.Hour

// UserStore is the account storage used by AuthService. *db.DB implements it.
type UserStore interface {
	CreateUser(ctx context.Context, displayName, email string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CreatePasswordReset(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumePasswordReset(ctx context.Context, tokenHash string, now time.Time) (uuid.UUID, error)
}

// ResetNotifier delivers password reset tokens to their owner.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, email, token string, expiresAt time.Time) error
}

// LogNotifier writes reset tokens to the debug log. It is meant for local
// development where no mail transport is configured.
type LogNotifier struct {
	Logger logging.Logger
}

// NotifyReset implements ResetNotifier.
func (n LogNotifier) NotifyReset(ctx context.Context, email, token string, expiresAt time.Time) error {
	n.Logger.Debug(ctx, "password reset requested", "email", email, "token", token, "expires_at", expiresAt)
	return nil
}

// AuthService implements register, login, logout and password reset. Every
// error it returns is an *AuthError.
type AuthService struct {
	users     UserStore
	passwords *config.PasswordConfig
	tokens    *JWTService
	notifier  ResetNotifier
	logger    logging.Logger
	resetTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserStore, passwords *config.PasswordConfig, tokens *JWTService, notifier ResetNotifier, logger logging.Logger) *AuthService {
	if logger == nil {
		logger = logging.Discard()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		notifier:  notifier,
		logger:    logger,
		resetTTL:  DefaultResetTTL,
		now:       time.Now,
	}
}

func toIdentity(u *db.User) *types.User {
	return &types.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}

// internal logs err and hides it behind a generic auth error.
func (s *AuthService) internal(ctx context.Context, op string, err error) *AuthError {
	s.logger.Error(ctx, "auth operation failed", "op", op, "error", err)
	return newAuthError(CodeInternal, genericInternalMessage)
}

func (s *AuthService) session(ctx context.Context, u *db.User) (*types.LoginResponse, error) {
	token, err := s.tokens.GenerateToken(u.ID, u.Email)
	if err != nil {
		return nil, s.internal(ctx, "token", err)
	}
	return &types.LoginResponse{User: toIdentity(u), Token: token}, nil
}

func validateRequest(req any) *AuthError {
	if err := types.ValidateStruct(req); err != nil {
		return newAuthError(CodeInvalidRequest, err.Error())
	}
	return nil
}

// Register creates an account with a password and signs it in.
func (s *AuthService) Register(ctx context.Context, req types.CreateUserRequest) (*types.LoginResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.passwords.CheckStrength(req.Password); err != nil {
		return nil, newAuthError(CodeWeakPassword, err.Error())
	}

	exists, err := s.users.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, s.internal(ctx, "register", err)
	}
	if exists {
		return nil, newAuthError(CodeEmailInUse, "An account with this email already exists.")
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, s.internal(ctx, "register", err)
	}
	id, err := s.users.CreateUser(ctx, req.DisplayName, req.Email)
	if err != nil {
		return nil, s.internal(ctx, "register", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		if delErr := s.users.DeleteUser(ctx, id); delErr != nil {
			s.logger.Warn(ctx, "failed to remove half-created user", "user_id", id, "error", delErr)
		}
		return nil, s.internal(ctx, "register", err)
	}

	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, s.internal(ctx, "register", err)
	}
	if u == nil {
		return nil, s.internal(ctx, "register", errors.New("created user not found"))
	}
	s.logger.Info(ctx, "user registered", "user_id", id)
	return s.session(ctx, u)
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.internal(ctx, "login", err)
	}
	if u == nil {
		return nil, newAuthError(CodeInvalidCredential, "Incorrect email or password.")
	}
	if !u.PasswordSet {
		return nil, newAuthError(CodeAccountIncomplete, "")
	}
	if !s.passwords.VerifyPassword(req.Password, u.PasswordHash) {
		return nil, newAuthError(CodeInvalidCredential, "Incorrect email or password.")
	}
	return s.session(ctx, u)
}

// Logout revokes the session token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return newAuthError(CodeInvalidToken, "Your session is no longer valid.")
	}
	return nil
}

// ForgotPassword issues a reset token for the account, if any. It succeeds
// for unknown emails too so callers cannot probe which accounts exist.
func (s *AuthService) ForgotPassword(ctx context.Context, req types.ForgotPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	u, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return s.internal(ctx, "forgot-password", err)
	}
	if u == nil {
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return s.internal(ctx, "forgot-password", err)
	}
	expires := s.now().Add(s.resetTTL)
	if err := s.users.CreatePasswordReset(ctx, u.ID, hashResetToken(token), expires); err != nil {
		return s.internal(ctx, "forgot-password", err)
	}
	if err := s.notifier.NotifyReset(ctx, u.Email, token, expires); err != nil {
		return s.internal(ctx, "forgot-password", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password. This also
// completes accounts that never had a password.
func (s *AuthService) ResetPassword(ctx context.Context, req types.ResetPasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := s.passwords.CheckStrength(req.NewPassword); err != nil {
		return newAuthError(CodeWeakPassword, err.Error())
	}

	userID, err := s.users.ConsumePasswordReset(ctx, hashResetToken(req.Token), s.now())
	if err != nil {
		return s.internal(ctx, "reset-password", err)
	}
	if userID == uuid.Nil {
		return newAuthError(CodeInvalidResetToken, "This reset link is invalid or has expired.")
	}

	hash, err := s.passwords.HashPassword(req.NewPassword)
	if err != nil {
		return s.internal(ctx, "reset-password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return s.internal(ctx, "reset-password", err)
	}
	s.logger.Info(ctx, "password reset", "user_id", userID)
	return nil
}

// Me returns the identity for an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, s.internal(ctx, "me", err)
	}
	if u == nil {
		return nil, newAuthError(CodeUserNotFound, "Account not found.")
	}
	return toIdentity(u), nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
