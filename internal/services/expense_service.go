package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"frugal/internal/amqp"
	"frugal/internal/core"
	"frugal/internal/storage"
)

// ExpenseService persists expenses in SQLite and mirrors them to the
// ledger asynchronously over AMQP. Publish failures never fail the
// request: the row stays in 'pending' state and the worker's periodic
// re-check picks it up.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create validates the expense and requires its habit and owner to
// exist before persisting.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (*core.Expense, error) {
	if !core.ValidID(e.HabitID) {
		return nil, core.ErrInvalidID
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkHabit(ctx, e.HabitID); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetUser(ctx, e.UserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("check user: %w", err)
	}

	e.ID = core.NewID()
	if err := s.storage.CreateExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	s.publishSync(ctx, e.ID)
	return &e, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*core.Expense, error) {
	if !core.ValidID(id) {
		return nil, core.ErrInvalidID
	}
	return s.storage.GetExpense(ctx, id)
}

func (s *ExpenseService) List(ctx context.Context, userID string, start, end *time.Time) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, userID, start, end)
}

func (s *ExpenseService) Update(ctx context.Context, id string, e core.Expense) (*core.Expense, error) {
	if !core.ValidID(id) {
		return nil, core.ErrInvalidID
	}

	existing, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.HabitID = e.HabitID
	existing.Name = e.Name
	existing.Amount = e.Amount
	existing.Date = e.Date

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if !core.ValidID(e.HabitID) {
		return nil, core.ErrInvalidID
	}
	if err := s.checkHabit(ctx, e.HabitID); err != nil {
		return nil, err
	}
	if err := s.storage.UpdateExpense(ctx, *existing); err != nil {
		return nil, err
	}

	s.publishSync(ctx, existing.ID)
	return existing, nil
}

// Delete removes an expense, reports the deletion count and queues the
// ledger removal.
func (s *ExpenseService) Delete(ctx context.Context, id string) (int64, error) {
	if !core.ValidID(id) {
		return 0, core.ErrInvalidID
	}

	n, err := s.storage.DeleteExpense(ctx, id)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, core.ErrNotFound
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishExpenseDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message", "expense_id", id, "error", err)
		}
	}
	return n, nil
}

func (s *ExpenseService) checkHabit(ctx context.Context, habitID string) error {
	if _, err := s.storage.GetHabit(ctx, habitID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrHabitNotFound
		}
		return fmt.Errorf("check habit: %w", err)
	}
	return nil
}

func (s *ExpenseService) publishSync(ctx context.Context, expenseID string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return
	}
	if err := s.amqpClient.PublishExpenseSync(ctx, expenseID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "expense_id", expenseID, "error", err)
	}
}
