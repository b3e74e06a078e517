package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"frugal/internal/auth"
	"frugal/internal/core"
	"frugal/internal/mail"
	"frugal/internal/storage"
)

// Mailed tokens are single use and expire after a day.
const verifyTokenTTL = 24 * time.Hour

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrTokenExpired   = errors.New("token expired")
)

type UserService struct {
	storage   *storage.SQLiteRepository
	mailer    *mail.Mailer
	jwtSecret string
	jwtTTL    time.Duration
}

func NewUserService(storage *storage.SQLiteRepository, mailer *mail.Mailer, jwtSecret string, jwtTTL time.Duration) *UserService {
	return &UserService{
		storage:   storage,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// Register creates an unverified account and mails the activation link.
// A mail failure does not undo the account; the user can ask for a new
// link by registering intent again later.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*core.User, error) {
	u := core.User{
		Name:  name,
		Email: email,
	}
	if err := u.ValidateRegistration(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u.ID = core.NewID()
	u.PasswordHash = hash
	u.CreatedAt = time.Now().UTC()

	if err := s.storage.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	token := core.VerifyToken{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Purpose:   core.PurposeVerify,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storage.CreateVerifyToken(ctx, token); err != nil {
		return nil, fmt.Errorf("create verify token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationEmail(ctx, u.Email, token.Token); err != nil {
			slog.ErrorContext(ctx, "Failed to send verification email", "user_id", u.ID, "error", err)
		}
	}

	return &u, nil
}

// Get returns the account profile.
func (s *UserService) Get(ctx context.Context, id string) (*core.User, error) {
	if !core.ValidID(id) {
		return nil, core.ErrInvalidID
	}
	return s.storage.GetUser(ctx, id)
}

// ResendVerification mails a fresh activation link to an existing
// account. Each call issues a new single-use token.
func (s *UserService) ResendVerification(ctx context.Context, userID string) error {
	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	token := core.VerifyToken{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Purpose:   core.PurposeVerify,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storage.CreateVerifyToken(ctx, token); err != nil {
		return fmt.Errorf("create verify token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationEmail(ctx, u.Email, token.Token); err != nil {
			slog.ErrorContext(ctx, "Failed to send verification email", "user_id", u.ID, "error", err)
		}
	}
	return nil
}

// Update renames the account. Email and password change through their
// own flows.
func (s *UserService) Update(ctx context.Context, id, name string) (*core.User, error) {
	if !core.ValidID(id) {
		return nil, core.ErrInvalidID
	}
	if strings.TrimSpace(name) == "" {
		return nil, core.ValidationError{{Field: "name", Message: "is required"}}
	}

	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Name = name
	if err := s.storage.UpdateUserName(ctx, id, name); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the account and reports the deletion count.
func (s *UserService) Delete(ctx context.Context, id string) (int64, error) {
	if !core.ValidID(id) {
		return 0, core.ErrInvalidID
	}

	n, err := s.storage.DeleteUser(ctx, id)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, core.ErrNotFound
	}
	return n, nil
}

// Verify consumes an activation token and marks the account verified.
func (s *UserService) Verify(ctx context.Context, token string) error {
	t, err := s.storage.GetVerifyToken(ctx, token)
	if err != nil {
		return err
	}
	if t.Purpose != core.PurposeVerify {
		return core.ErrNotFound
	}
	if time.Since(t.CreatedAt) > verifyTokenTTL {
		return ErrTokenExpired
	}

	if err := s.storage.MarkUserVerified(ctx, t.UserID); err != nil {
		return err
	}
	return s.storage.DeleteVerifyToken(ctx, token)
}

// Login checks credentials and issues a JWT. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *core.User, error) {
	u, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrBadCredentials
	}

	token, err := auth.GenerateJWT(u.ID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

// RequestPasswordReset mails a reset link. An unknown address is
// silently accepted so the endpoint doesn't leak registered emails.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token := core.VerifyToken{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Purpose:   core.PurposeReset,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.storage.CreateVerifyToken(ctx, token); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(ctx, u.Email, token.Token); err != nil {
			slog.ErrorContext(ctx, "Failed to send reset email", "user_id", u.ID, "error", err)
		}
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	t, err := s.storage.GetVerifyToken(ctx, token)
	if err != nil {
		return err
	}
	if t.Purpose != core.PurposeReset {
		return core.ErrNotFound
	}
	if time.Since(t.CreatedAt) > verifyTokenTTL {
		return ErrTokenExpired
	}

	if len(password) < 8 {
		return core.ValidationError{{Field: "password", Message: "must be at least 8 characters"}}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.storage.SetUserPassword(ctx, t.UserID, hash); err != nil {
		return err
	}
	return s.storage.DeleteVerifyToken(ctx, token)
}
