package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"frugal/internal/amqp"
	"frugal/internal/core"
	"frugal/internal/storage"
)

type fakeLedger struct {
	appended []string
	deleted  []string
	fail     bool
}

func (f *fakeLedger) AppendExpense(ctx context.Context, e core.Expense) error {
	if f.fail {
		return errors.New("ledger unavailable")
	}
	f.appended = append(f.appended, e.ID)
	return nil
}

func (f *fakeLedger) DeleteExpense(ctx context.Context, expenseID string) error {
	if f.fail {
		return errors.New("ledger unavailable")
	}
	f.deleted = append(f.deleted, expenseID)
	return nil
}

func newWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *fakeLedger) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ledger := &fakeLedger{}
	return NewSyncWorker(repo, ledger, 10), repo, ledger
}

func seedExpense(t *testing.T, repo *storage.SQLiteRepository) core.Expense {
	t.Helper()
	e := core.Expense{
		ID:     core.NewID(),
		UserID: "user-1",
		Name:   "latte",
		Amount: core.Money{Cents: 450},
		Date:   time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}

func TestHandleSyncMessage(t *testing.T) {
	w, repo, ledger := newWorker(t)
	ctx := context.Background()
	e := seedExpense(t, repo)

	if err := w.HandleMessage(ctx, amqp.NewExpenseSyncMessage(e.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(ledger.appended) != 1 || ledger.appended[0] != e.ID {
		t.Fatalf("expense not appended: %+v", ledger.appended)
	}

	// Synced rows no longer show up as pending
	pending, err := repo.GetPendingSyncExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending expenses, got %d", len(pending))
	}
}

func TestHandleSyncMessageMissingExpense(t *testing.T) {
	w, _, ledger := newWorker(t)

	// Gone before delivery: drop silently
	if err := w.HandleMessage(context.Background(), amqp.NewExpenseSyncMessage(core.NewID())); err != nil {
		t.Fatalf("missing expense should not error: %v", err)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("nothing should be appended, got %+v", ledger.appended)
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	w, _, ledger := newWorker(t)

	id := core.NewID()
	if err := w.HandleMessage(context.Background(), amqp.NewExpenseDeleteMessage(id)); err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if len(ledger.deleted) != 1 || ledger.deleted[0] != id {
		t.Fatalf("row not deleted: %+v", ledger.deleted)
	}
}

func TestSyncFailureMarksError(t *testing.T) {
	w, repo, ledger := newWorker(t)
	ctx := context.Background()
	e := seedExpense(t, repo)

	ledger.fail = true
	if err := w.HandleMessage(ctx, amqp.NewExpenseSyncMessage(e.ID)); err == nil {
		t.Fatal("ledger failure should propagate")
	}

	// Row moved to error state, not pending
	pending, err := repo.GetPendingSyncExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("failed row should not stay pending, got %d", len(pending))
	}
}

func TestProcessPendingExpenses(t *testing.T) {
	w, repo, ledger := newWorker(t)
	ctx := context.Background()
	a := seedExpense(t, repo)

	if err := w.ProcessPendingExpenses(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(ledger.appended) != 1 || ledger.appended[0] != a.ID {
		t.Fatalf("pending expense not synced: %+v", ledger.appended)
	}

	// Second pass has nothing left
	ledger.appended = nil
	if err := w.ProcessPendingExpenses(ctx); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("no work expected, got %+v", ledger.appended)
	}
}
