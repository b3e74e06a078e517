package services

import (
	"context"
	"testing"
	"time"

	"frugal/internal/core"
)

func TestExpirySchedulerRunOnce(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewGoalService(repo)
	sched := NewExpiryScheduler(repo, time.Hour)
	ctx := context.Background()

	elapsed := goalPayload(core.NewID())
	created, err := svc.Create(ctx, elapsed)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := sched.RunOnce(ctx, day(9))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired goal, got %d", n)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Active {
		t.Fatal("goal should be inactive after the sweep")
	}

	n, err = sched.RunOnce(ctx, day(9))
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("rerun should be a no-op, got %d", n)
	}
}

func TestExpirySchedulerLifecycle(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewGoalService(repo)
	ctx := context.Background()

	// Already past its end, so the initial sweep on Start catches it
	g := goalPayload(core.NewID())
	g.Start = time.Now().UTC().Add(-48 * time.Hour)
	g.End = time.Now().UTC().Add(-24 * time.Hour)
	created, err := svc.Create(ctx, g)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sched := NewExpiryScheduler(repo, time.Hour)
	sched.Start(ctx)
	sched.Start(ctx) // second Start is a no-op

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := svc.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.Active {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("goal not expired by the initial sweep")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sched.Stop()

	// Stop after Stop must not block or panic
	sched.Stop()
}
