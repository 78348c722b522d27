package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
)

type ProtocolService struct {
	repo domain.ProtocolRepository
	now  func() time.Time
}

func NewProtocolService(repo domain.ProtocolRepository, now func() time.Time) *ProtocolService {
	return &ProtocolService{
		repo: repo,
		now:  now,
	}
}

type ProtocolInput struct {
	// DurationDays is nil when the form submitted no selection; zero is a
	// valid value meaning unlimited.
	DurationDays *int
	Tasks        []domain.TaskInput
}

// CreateOrEdit validates the input and fully overwrites the protocol
// singleton. The start date is fixed at creation: an edit keeps the date the
// existing protocol started on, only the duration and the (renumbered) task
// list change. Nothing is persisted when validation fails.
func (s *ProtocolService) CreateOrEdit(ctx context.Context, userID string, input ProtocolInput) (*domain.Protocol, error) {
	if input.DurationDays == nil {
		return nil, domain.ErrNoDuration
	}

	startDate := s.now().UTC()
	existing, err := s.repo.Load(ctx, userID)
	switch {
	case err == nil:
		startDate = existing.StartDate
	case errors.Is(err, domain.ErrProtocolNotFound):
	default:
		return nil, fmt.Errorf("protocol service: failed to load protocol: %w", err)
	}

	protocol, err := domain.NewProtocol(*input.DurationDays, startDate, input.Tasks)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, userID, protocol); err != nil {
		return nil, fmt.Errorf("protocol service: failed to save protocol: %w", err)
	}

	return protocol, nil
}

func (s *ProtocolService) Get(ctx context.Context, userID string) (*domain.Protocol, error) {
	return s.repo.Load(ctx, userID)
}
