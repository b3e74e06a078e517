package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"frugal/internal/core"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestStorage(t), nil, "unit-test-secret-key", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !core.ValidID(u.ID) {
		t.Fatalf("user should get a generated id, got %q", u.ID)
	}
	if u.Verified {
		t.Fatal("new user should be unverified")
	}
	if u.PasswordHash == "hunter2hunter2" {
		t.Fatal("password must be hashed")
	}

	token, logged, err := svc.Login(ctx, "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || logged.ID != u.ID {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, logged)
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password should fail, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "hunter2hunter2"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown email should fail the same way, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	var verr core.ValidationError
	if _, err := svc.Register(ctx, "", "not-an-email", "short"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr) != 3 {
		t.Fatalf("expected 3 field errors, got %+v", verr)
	}

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "Ada Again", "ada@example.com", "hunter2hunter2"); !errors.Is(err, core.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserAccountLifecycle(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "ada@example.com" {
		t.Fatalf("unexpected profile %+v", got)
	}
	if _, err := svc.Get(ctx, core.NewID()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing user should be ErrNotFound, got %v", err)
	}

	if err := svc.ResendVerification(ctx, u.ID); err != nil {
		t.Fatalf("resend verification: %v", err)
	}
	if err := svc.ResendVerification(ctx, core.NewID()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("resend for missing user should be ErrNotFound, got %v", err)
	}

	renamed, err := svc.Update(ctx, u.ID, "Ada Lovelace")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if renamed.Name != "Ada Lovelace" {
		t.Fatalf("rename not applied: %+v", renamed)
	}
	var verr core.ValidationError
	if _, err := svc.Update(ctx, u.ID, "  "); !errors.As(err, &verr) {
		t.Fatalf("blank name should be a ValidationError, got %v", err)
	}
	if _, err := svc.Update(ctx, core.NewID(), "Nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("rename of missing user should be ErrNotFound, got %v", err)
	}

	n, err := svc.Delete(ctx, u.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected deletion count 1, got %d", n)
	}
	if _, err := svc.Delete(ctx, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestVerifyFlow(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewUserService(repo, nil, "unit-test-secret-key", time.Hour)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tok := core.VerifyToken{Token: "tok-verify", UserID: u.ID, Purpose: core.PurposeVerify, CreatedAt: time.Now().UTC()}
	if err := repo.CreateVerifyToken(ctx, tok); err != nil {
		t.Fatalf("create token: %v", err)
	}

	if err := svc.Verify(ctx, "tok-verify"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	got, err := repo.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !got.Verified {
		t.Fatal("user should be verified")
	}

	// Token is single use
	if err := svc.Verify(ctx, "tok-verify"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("reused token should be ErrNotFound, got %v", err)
	}

	stale := core.VerifyToken{Token: "tok-stale", UserID: u.ID, Purpose: core.PurposeVerify, CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	if err := repo.CreateVerifyToken(ctx, stale); err != nil {
		t.Fatalf("create stale token: %v", err)
	}
	if err := svc.Verify(ctx, "tok-stale"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewUserService(repo, nil, "unit-test-secret-key", time.Hour)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Unknown email is accepted silently
	if err := svc.RequestPasswordReset(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("reset for unknown email: %v", err)
	}

	tok := core.VerifyToken{Token: "tok-reset", UserID: u.ID, Purpose: core.PurposeReset, CreatedAt: time.Now().UTC()}
	if err := repo.CreateVerifyToken(ctx, tok); err != nil {
		t.Fatalf("create token: %v", err)
	}

	// A verify-purpose token must not reset passwords
	verifyTok := core.VerifyToken{Token: "tok-verify", UserID: u.ID, Purpose: core.PurposeVerify, CreatedAt: time.Now().UTC()}
	if err := repo.CreateVerifyToken(ctx, verifyTok); err != nil {
		t.Fatalf("create verify token: %v", err)
	}
	if err := svc.ResetPassword(ctx, "tok-verify", "anothergoodpass"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("wrong purpose should be ErrNotFound, got %v", err)
	}

	if err := svc.ResetPassword(ctx, "tok-reset", "anothergoodpass"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "hunter2hunter2"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ada@example.com", "anothergoodpass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
