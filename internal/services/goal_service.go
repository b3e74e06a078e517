package services

import (
	"context"
	"errors"
	"fmt"

	"frugal/internal/core"
	"frugal/internal/storage"
)

// GoalService owns the goal lifecycle. Creation enforces the
// one-active-goal-per-habit rule twice: a read check here for the
// common case, and the partial unique index in storage for the race.
type GoalService struct {
	storage *storage.SQLiteRepository
}

func NewGoalService(storage *storage.SQLiteRepository) *GoalService {
	return &GoalService{storage: storage}
}

// Create validates and persists a new goal. Checks run in order: field
// schema, time window, then the active-goal uniqueness rule. The habit
// itself is not required to exist.
func (s *GoalService) Create(ctx context.Context, g core.Goal) (*core.Goal, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := g.ValidateWindow(); err != nil {
		return nil, err
	}

	if _, err := s.storage.FindActiveGoal(ctx, g.HabitID); err == nil {
		return nil, core.ErrDuplicateActiveGoal
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("check active goal: %w", err)
	}

	g.ID = core.NewID()
	g.Pass = false
	g.Active = true

	if err := s.storage.CreateGoal(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Update overwrites the mutable fields of an existing goal: end, type,
// name, period and target. Start, habit, owner and the status flags are
// never changed here, and the uniqueness rule is not re-checked. The
// payload is validated before the record is looked up, so a bad body
// against a missing id reports the validation failure.
func (s *GoalService) Update(ctx context.Context, id string, g core.Goal) (*core.Goal, error) {
	if !core.ValidID(id) {
		return nil, core.ErrInvalidID
	}
	if err := g.ValidateUpdate(); err != nil {
		return nil, err
	}

	existing, err := s.storage.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.End = g.End
	existing.Type = g.Type
	existing.Name = g.Name
	existing.Period = g.Period
	existing.Target = g.Target

	// The window is re-checked against the stored start
	if err := existing.ValidateWindow(); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateGoal(ctx, *existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a goal and reports how many records went away,
// expected to be 1.
func (s *GoalService) Delete(ctx context.Context, id string) (int64, error) {
	if !core.ValidID(id) {
		return 0, core.ErrInvalidID
	}

	n, err := s.storage.DeleteGoal(ctx, id)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, core.ErrNotFound
	}
	return n, nil
}

// Get fetches a goal by id. A missing goal surfaces as ErrNotFound;
// callers decide how to render that.
func (s *GoalService) Get(ctx context.Context, id string) (*core.Goal, error) {
	if !core.ValidID(id) {
		return nil, core.ErrInvalidID
	}
	return s.storage.GetGoal(ctx, id)
}

// ListForHabit returns a habit's goals for one user. The habit must
// exist, unlike on the create path.
func (s *GoalService) ListForHabit(ctx context.Context, userID, habitID string, f core.GoalFilter) ([]core.Goal, error) {
	if !core.ValidID(habitID) {
		return nil, core.ErrInvalidID
	}
	if _, err := s.storage.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}
	return s.storage.ListGoals(ctx, userID, habitID, f)
}

// ListForUser returns every goal of a user across habits.
func (s *GoalService) ListForUser(ctx context.Context, userID string, f core.GoalFilter) ([]core.Goal, error) {
	return s.storage.ListGoals(ctx, userID, "", f)
}
