package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
)

var _ domain.StreakRepository = (*StoreStreakRepository)(nil)

// StoreStreakRepository persists the streak singleton at
// users/{uid}/stats/streak.
type StoreStreakRepository struct {
	store DocumentStore
}

func NewStoreStreakRepository(store DocumentStore) *StoreStreakRepository {
	return &StoreStreakRepository{store: store}
}

type streakDoc struct {
	CurrentStreak int     `json:"currentStreak"`
	HighestStreak int     `json:"highestStreak"`
	LastCompleted *string `json:"lastCompleted"`
}

func (r *StoreStreakRepository) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	raw, err := r.store.Get(ctx, streakPath(userID))
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, domain.ErrStreakNotFound
		}
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}

	var doc streakDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("corrupted streak document: %w", err)
	}

	state := &domain.StreakState{
		CurrentStreak: doc.CurrentStreak,
		HighestStreak: doc.HighestStreak,
	}

	if doc.LastCompleted != nil && *doc.LastCompleted != "" {
		last, err := time.Parse(domain.DateLayout, *doc.LastCompleted)
		if err != nil {
			return nil, fmt.Errorf("corrupted streak date: %w", err)
		}
		state.LastCompleted = &last
	}

	return state, nil
}

func (r *StoreStreakRepository) Set(ctx context.Context, userID string, s *domain.StreakState) error {
	doc := streakDoc{
		CurrentStreak: s.CurrentStreak,
		HighestStreak: s.HighestStreak,
	}

	// All three fields travel together; a nil date is written explicitly so
	// a reset clears any previous value under merge semantics.
	if s.LastCompleted != nil {
		formatted := domain.DayOf(*s.LastCompleted).Format(domain.DateLayout)
		doc.LastCompleted = &formatted
	}

	if err := r.store.Set(ctx, streakPath(userID), doc, true); err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}
