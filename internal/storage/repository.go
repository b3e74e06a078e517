// Package storage persists the domain model in SQLite. Timestamps are
// stored as Unix seconds in UTC so range predicates compare as plain
// integers.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"frugal/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given index or column path (e.g. "goals.habit_id").
func isUniqueViolation(err error, path string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") && strings.Contains(err.Error(), path)
}

func toUnix(t time.Time) int64 { return t.UTC().Unix() }

func fromUnix(n int64) time.Time { return time.Unix(n, 0).UTC() }

const goalColumns = "id, user_id, habit_id, start_at, end_at, type, name, period, target_cents, pass, active"

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var (
		g              core.Goal
		startAt, endAt int64
	)
	err := row.Scan(&g.ID, &g.UserID, &g.HabitID, &startAt, &endAt, &g.Type, &g.Name, &g.Period, &g.Target.Cents, &g.Pass, &g.Active)
	if err != nil {
		return core.Goal{}, err
	}
	g.Start = fromUnix(startAt)
	g.End = fromUnix(endAt)
	return g, nil
}

// CreateGoal inserts a goal. The partial unique index on active goals
// turns a lost check-then-insert race into ErrDuplicateActiveGoal.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, habit_id, start_at, end_at, type, name, period, target_cents, pass, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.HabitID, toUnix(g.Start), toUnix(g.End), g.Type, g.Name, g.Period, g.Target.Cents, g.Pass, g.Active, time.Now().Unix())
	if isUniqueViolation(err, "goals.habit_id") {
		return core.ErrDuplicateActiveGoal
	}
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (*core.Goal, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = ?", id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

// FindActiveGoal returns the active goal for a habit, or ErrNotFound.
func (r *SQLiteRepository) FindActiveGoal(ctx context.Context, habitID string) (*core.Goal, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+goalColumns+" FROM goals WHERE habit_id = ? AND active = 1", habitID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find active goal: %w", err)
	}
	return &g, nil
}

// UpdateGoal overwrites the mutable goal fields. Start, habit, owner and
// the status flags are left untouched.
func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET end_at = ?, type = ?, name = ?, period = ?, target_cents = ? WHERE id = ?`,
		toUnix(g.End), g.Type, g.Name, g.Period, g.Target.Cents, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteGoal removes a goal and returns the number of rows removed.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete goal rows affected: %w", err)
	}
	return n, nil
}

// ListGoals returns goals for a user, optionally narrowed to one habit
// and by the filter. The start/end pair applies strict containment: both
// endpoints of a matching goal lie inside the filter window. Rows come
// back in insertion order.
func (r *SQLiteRepository) ListGoals(ctx context.Context, userID, habitID string, f core.GoalFilter) ([]core.Goal, error) {
	q := "SELECT " + goalColumns + " FROM goals WHERE user_id = ?"
	args := []any{userID}

	if habitID != "" {
		q += " AND habit_id = ?"
		args = append(args, habitID)
	}
	if f.Start != nil && f.End != nil {
		q += " AND start_at >= ? AND start_at <= ? AND end_at >= ? AND end_at <= ?"
		lo, hi := toUnix(*f.Start), toUnix(*f.End)
		args = append(args, lo, hi, lo, hi)
	}
	if f.Active != nil {
		q += " AND active = ?"
		args = append(args, *f.Active)
	}
	if f.Pass != nil {
		q += " AND pass = ?"
		args = append(args, *f.Pass)
	}
	if f.Type != nil {
		q += " AND type = ?"
		args = append(args, *f.Type)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := []core.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// ExpireGoals deactivates every active goal whose window has closed.
// One bulk update; rerunning with no new expirations is a no-op.
func (r *SQLiteRepository) ExpireGoals(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE goals SET active = 0 WHERE active = 1 AND end_at <= ?", toUnix(now))
	if err != nil {
		return 0, fmt.Errorf("expire goals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire goals rows affected: %w", err)
	}
	return n, nil
}
