package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
)

var _ domain.ProtocolRepository = (*StoreProtocolRepository)(nil)

// StoreProtocolRepository persists the protocol singleton at
// users/{uid}/protocol/current.
type StoreProtocolRepository struct {
	store DocumentStore
}

func NewStoreProtocolRepository(store DocumentStore) *StoreProtocolRepository {
	return &StoreProtocolRepository{store: store}
}

type taskDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type protocolDoc struct {
	Duration  int       `json:"duration"`
	StartDate string    `json:"startDate"`
	Tasks     []taskDoc `json:"tasks"`
}

func (r *StoreProtocolRepository) Load(ctx context.Context, userID string) (*domain.Protocol, error) {
	raw, err := r.store.Get(ctx, protocolPath(userID))
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, domain.ErrProtocolNotFound
		}
		return nil, fmt.Errorf("failed to read protocol: %w", err)
	}

	var doc protocolDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("corrupted protocol document: %w", err)
	}

	startDate, err := time.Parse(time.RFC3339, doc.StartDate)
	if err != nil {
		return nil, fmt.Errorf("corrupted protocol start date: %w", err)
	}

	tasks := make([]domain.Task, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		tasks = append(tasks, domain.Task{ID: t.ID, Name: t.Name, Description: t.Description})
	}

	return &domain.Protocol{
		DurationDays: doc.Duration,
		StartDate:    domain.DayOf(startDate),
		Tasks:        tasks,
	}, nil
}

func (r *StoreProtocolRepository) Save(ctx context.Context, userID string, p *domain.Protocol) error {
	doc := protocolDoc{
		Duration:  p.DurationDays,
		StartDate: p.StartDate.UTC().Format(time.RFC3339),
		Tasks:     make([]taskDoc, 0, len(p.Tasks)),
	}
	for _, t := range p.Tasks {
		doc.Tasks = append(doc.Tasks, taskDoc{ID: t.ID, Name: t.Name, Description: t.Description})
	}

	// Full overwrite: create and edit are the same operation.
	if err := r.store.Set(ctx, protocolPath(userID), doc, false); err != nil {
		return fmt.Errorf("failed to save protocol: %w", err)
	}
	return nil
}
