package services

import (
	"context"
	"errors"
	"fmt"

	"frugal/internal/core"
	"frugal/internal/storage"
)

type HabitService struct {
	storage *storage.SQLiteRepository
}

func NewHabitService(storage *storage.SQLiteRepository) *HabitService {
	return &HabitService{storage: storage}
}

// Create validates the habit, requires its owner to exist and enforces
// the per-user name uniqueness rule.
func (s *HabitService) Create(ctx context.Context, h core.Habit) (*core.Habit, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.storage.GetUser(ctx, h.UserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("check user: %w", err)
	}

	h.ID = core.NewID()
	if err := s.storage.CreateHabit(ctx, h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *HabitService) Get(ctx context.Context, id string) (*core.Habit, error) {
	if !core.ValidID(id) {
		return nil, core.ErrInvalidID
	}
	return s.storage.GetHabit(ctx, id)
}

func (s *HabitService) List(ctx context.Context, userID string) ([]core.Habit, error) {
	return s.storage.ListHabits(ctx, userID)
}

// Update overwrites name, budget, budget type and icon.
func (s *HabitService) Update(ctx context.Context, id string, h core.Habit) (*core.Habit, error) {
	if !core.ValidID(id) {
		return nil, core.ErrInvalidID
	}

	existing, err := s.storage.GetHabit(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = h.Name
	existing.Budget = h.Budget
	existing.BudgetType = h.BudgetType
	existing.Icon = h.Icon

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.UpdateHabit(ctx, *existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a habit and reports the deletion count. Its expenses
// survive, detached.
func (s *HabitService) Delete(ctx context.Context, id string) (int64, error) {
	if !core.ValidID(id) {
		return 0, core.ErrInvalidID
	}

	n, err := s.storage.DeleteHabit(ctx, id)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, core.ErrNotFound
	}
	return n, nil
}
