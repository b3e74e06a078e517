package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"frugal/internal/core"
)

const userColumns = "id, name, email, password_hash, verified, created_at"

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var (
		u         core.User
		createdAt int64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Verified, &createdAt)
	if err != nil {
		return core.User{}, err
	}
	u.CreatedAt = fromUnix(createdAt)
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, verified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Verified, toUnix(u.CreatedAt))
	if isUniqueViolation(err, "users.email") {
		return core.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *SQLiteRepository) MarkUserVerified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET verified = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark user verified rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SetUserPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("set user password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set user password rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) UpdateUserName(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("update user name: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user name rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateVerifyToken(ctx context.Context, t core.VerifyToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verify_tokens (token, user_id, purpose, created_at) VALUES (?, ?, ?, ?)`,
		t.Token, t.UserID, t.Purpose, toUnix(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert verify token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetVerifyToken(ctx context.Context, token string) (*core.VerifyToken, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT token, user_id, purpose, created_at FROM verify_tokens WHERE token = ?", token)
	var (
		t         core.VerifyToken
		createdAt int64
	)
	err := row.Scan(&t.Token, &t.UserID, &t.Purpose, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get verify token: %w", err)
	}
	t.CreatedAt = fromUnix(createdAt)
	return &t, nil
}

func (r *SQLiteRepository) DeleteVerifyToken(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM verify_tokens WHERE token = ?", token); err != nil {
		return fmt.Errorf("delete verify token: %w", err)
	}
	return nil
}
