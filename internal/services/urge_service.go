package services

import (
	"context"
	"time"

	"frugal/internal/core"
	"frugal/internal/storage"
)

type UrgeService struct {
	storage *storage.SQLiteRepository
}

func NewUrgeService(storage *storage.SQLiteRepository) *UrgeService {
	return &UrgeService{storage: storage}
}

// Create logs an urge against an existing habit.
func (s *UrgeService) Create(ctx context.Context, u core.Urge) (*core.Urge, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if !core.ValidID(u.HabitID) {
		return nil, core.ErrInvalidID
	}
	if _, err := s.storage.GetHabit(ctx, u.HabitID); err != nil {
		return nil, err
	}

	u.ID = core.NewID()
	if err := s.storage.CreateUrge(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListForHabit returns a habit's urges inside [start, end]. Both bounds
// are required.
func (s *UrgeService) ListForHabit(ctx context.Context, userID, habitID string, start, end time.Time) ([]core.Urge, error) {
	if !core.ValidID(habitID) {
		return nil, core.ErrInvalidID
	}
	if _, err := s.storage.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}
	return s.storage.ListUrges(ctx, userID, habitID, start, end)
}

// ListForUser returns every urge of a user inside [start, end].
func (s *UrgeService) ListForUser(ctx context.Context, userID string, start, end time.Time) ([]core.Urge, error) {
	return s.storage.ListUrges(ctx, userID, "", start, end)
}
