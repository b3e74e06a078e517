// Package worker mirrors locally stored expenses into the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"frugal/internal/amqp"
	"frugal/internal/core"
	"frugal/internal/metrics"
	"frugal/internal/storage"
)

// Ledger is the remote store expenses are mirrored into.
type Ledger interface {
	AppendExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
}

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	ledger    Ledger
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, ledger Ledger, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleMessage processes one queued sync or delete request.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	switch msg.Action {
	case amqp.ActionDelete:
		return w.handleDelete(ctx, msg.ExpenseID)
	default:
		return w.handleSync(ctx, msg.ExpenseID)
	}
}

func (w *SyncWorker) handleSync(ctx context.Context, expenseID string) error {
	expense, err := w.storage.GetExpense(ctx, expenseID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between publish and delivery; nothing to mirror
		slog.WarnContext(ctx, "Expense gone before sync", "expense_id", expenseID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}

	if err := w.ledger.AppendExpense(ctx, *expense); err != nil {
		metrics.RecordExpenseSync(err)
		if markErr := w.storage.MarkExpenseSyncError(ctx, expenseID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "expense_id", expenseID, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkExpenseSynced(ctx, expenseID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	metrics.RecordExpenseSync(nil)

	slog.InfoContext(ctx, "Expense mirrored to ledger", "expense_id", expenseID)
	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, expenseID string) error {
	if err := w.ledger.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("delete ledger row: %w", err)
	}
	slog.InfoContext(ctx, "Expense removed from ledger", "expense_id", expenseID)
	return nil
}

// ProcessPendingExpenses re-checks rows still marked pending. Backup
// path for messages lost between publish and delivery.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, e := range pending {
		if err := w.handleSync(ctx, e.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending expense", "expense_id", e.ID, "error", err)
		}
	}
	return nil
}
