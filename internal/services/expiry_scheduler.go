package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"frugal/internal/metrics"
	"frugal/internal/storage"
)

// ExpiryScheduler periodically deactivates goals whose window has
// closed. It runs one sweep immediately on Start and then on every
// tick. A sweep that finds nothing to do is a no-op, so overlapping
// deployments and restarts are safe.
type ExpiryScheduler struct {
	storage  *storage.SQLiteRepository
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewExpiryScheduler(storage *storage.SQLiteRepository, interval time.Duration) *ExpiryScheduler {
	return &ExpiryScheduler{
		storage:  storage,
		interval: interval,
	}
}

// Start launches the sweep loop. Calling Start on a running scheduler
// is a no-op.
func (s *ExpiryScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.InfoContext(ctx, "Goal expiry scheduler started", "interval", s.interval)
}

func (s *ExpiryScheduler) run(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpiryScheduler) sweep(ctx context.Context) {
	n, err := s.RunOnce(ctx, time.Now())
	metrics.RecordExpirySweep(n, err)
	if err != nil {
		slog.ErrorContext(ctx, "Goal expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired goals", "count", n)
	}
}

// RunOnce performs a single sweep at the given time and returns how
// many goals it deactivated.
func (s *ExpiryScheduler) RunOnce(ctx context.Context, now time.Time) (int64, error) {
	return s.storage.ExpireGoals(ctx, now)
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("Goal expiry scheduler stopped")
}
