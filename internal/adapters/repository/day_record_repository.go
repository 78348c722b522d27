package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
)

var _ domain.DayRecordRepository = (*StoreDayRecordRepository)(nil)

// StoreDayRecordRepository persists per-day completion records at
// users/{uid}/dailyTasks/{date}, keyed by the ISO date-only string.
type StoreDayRecordRepository struct {
	store DocumentStore
}

func NewStoreDayRecordRepository(store DocumentStore) *StoreDayRecordRepository {
	return &StoreDayRecordRepository{store: store}
}

type dayDoc struct {
	Date           string          `json:"date"`
	CompletedTasks map[string]bool `json:"completedTasks"`
}

func (r *StoreDayRecordRepository) Get(ctx context.Context, userID string, day time.Time) (*domain.DayRecord, error) {
	raw, err := r.store.Get(ctx, dayPath(userID, day))
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, domain.ErrDayRecordNotFound
		}
		return nil, fmt.Errorf("failed to read day record: %w", err)
	}

	var doc dayDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("corrupted day record: %w", err)
	}

	date, err := time.Parse(domain.DateLayout, doc.Date)
	if err != nil {
		return nil, fmt.Errorf("corrupted day record date: %w", err)
	}

	completed := doc.CompletedTasks
	if completed == nil {
		completed = make(map[string]bool)
	}

	return &domain.DayRecord{Date: date, Completed: completed}, nil
}

func (r *StoreDayRecordRepository) Put(ctx context.Context, userID string, rec *domain.DayRecord) error {
	doc := dayDoc{
		Date:           domain.DayOf(rec.Date).Format(domain.DateLayout),
		CompletedTasks: rec.Completed,
	}

	// Merge upsert: the full completion map is replaced, any other field of
	// the document stays as it was.
	if err := r.store.Set(ctx, dayPath(userID, rec.Date), doc, true); err != nil {
		return fmt.Errorf("failed to save day record: %w", err)
	}
	return nil
}
