package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"frugal/internal/core"
)

const habitColumns = "id, user_id, name, budget_cents, budget_type, icon"

func scanHabit(row interface{ Scan(...any) error }) (core.Habit, error) {
	var h core.Habit
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Budget.Cents, &h.BudgetType, &h.Icon)
	return h, err
}

func (r *SQLiteRepository) CreateHabit(ctx context.Context, h core.Habit) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, name, budget_cents, budget_type, icon, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Budget.Cents, h.BudgetType, h.Icon, time.Now().Unix())
	if isUniqueViolation(err, "habits.") {
		return core.ErrDuplicateHabitName
	}
	if err != nil {
		return fmt.Errorf("insert habit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetHabit(ctx context.Context, id string) (*core.Habit, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+habitColumns+" FROM habits WHERE id = ?", id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &h, nil
}

func (r *SQLiteRepository) ListHabits(ctx context.Context, userID string) ([]core.Habit, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+habitColumns+" FROM habits WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	habits := []core.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (r *SQLiteRepository) UpdateHabit(ctx context.Context, h core.Habit) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE habits SET name = ?, budget_cents = ?, budget_type = ?, icon = ? WHERE id = ?`,
		h.Name, h.Budget.Cents, h.BudgetType, h.Icon, h.ID)
	if isUniqueViolation(err, "habits.") {
		return core.ErrDuplicateHabitName
	}
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update habit rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteHabit removes the habit and detaches its expenses, mirroring the
// write path that logged them against it.
func (r *SQLiteRepository) DeleteHabit(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete habit rows affected: %w", err)
	}
	if n > 0 {
		if _, err := r.db.ExecContext(ctx, "UPDATE expenses SET habit_id = '' WHERE habit_id = ?", id); err != nil {
			return n, fmt.Errorf("detach expenses: %w", err)
		}
	}
	return n, nil
}

const expenseColumns = "id, user_id, habit_id, name, amount_cents, spent_at"

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e       core.Expense
		spentAt int64
	)
	err := row.Scan(&e.ID, &e.UserID, &e.HabitID, &e.Name, &e.Amount.Cents, &spentAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date = fromUnix(spentAt)
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, habit_id, name, amount_cents, spent_at, sync_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		e.ID, e.UserID, e.HabitID, e.Name, e.Amount.Cents, toUnix(e.Date), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return &e, nil
}

// ListExpenses returns a user's expenses, optionally restricted to a
// date range (both bounds required, inclusive).
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string, start, end *time.Time) ([]core.Expense, error) {
	q := "SELECT " + expenseColumns + " FROM expenses WHERE user_id = ?"
	args := []any{userID}
	if start != nil && end != nil {
		q += " AND spent_at >= ? AND spent_at <= ?"
		args = append(args, toUnix(*start), toUnix(*end))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET habit_id = ?, name = ?, amount_cents = ?, spent_at = ?, sync_status = 'pending' WHERE id = ?`,
		e.HabitID, e.Name, e.Amount.Cents, toUnix(e.Date), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expense rows affected: %w", err)
	}
	return n, nil
}

// GetPendingSyncExpenses returns expenses not yet mirrored to the ledger.
func (r *SQLiteRepository) GetPendingSyncExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE sync_status = 'pending' LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) MarkExpenseSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE expenses SET sync_status = 'synced' WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkExpenseSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE expenses SET sync_status = 'error' WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	return nil
}

const urgeColumns = "id, user_id, habit_id, felt_at"

func (r *SQLiteRepository) CreateUrge(ctx context.Context, u core.Urge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO urges (id, user_id, habit_id, felt_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.UserID, u.HabitID, toUnix(u.Date), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert urge: %w", err)
	}
	return nil
}

// ListUrges returns a user's urges inside [start, end], optionally
// narrowed to one habit.
func (r *SQLiteRepository) ListUrges(ctx context.Context, userID, habitID string, start, end time.Time) ([]core.Urge, error) {
	q := "SELECT " + urgeColumns + " FROM urges WHERE user_id = ? AND felt_at >= ? AND felt_at <= ?"
	args := []any{userID, toUnix(start), toUnix(end)}
	if habitID != "" {
		q += " AND habit_id = ?"
		args = append(args, habitID)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list urges: %w", err)
	}
	defer rows.Close()

	urges := []core.Urge{}
	for rows.Next() {
		var (
			u      core.Urge
			feltAt int64
		)
		if err := rows.Scan(&u.ID, &u.UserID, &u.HabitID, &feltAt); err != nil {
			return nil, fmt.Errorf("scan urge: %w", err)
		}
		u.Date = fromUnix(feltAt)
		urges = append(urges, u)
	}
	return urges, rows.Err()
}
