package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
	"github.com/monkmode/tracker/internal/core/workers"
)

// DayService is the daily streak engine: it owns the session-start and
// task-toggle transitions over one user's day record and streak singleton.
type DayService struct {
	protocolRepo domain.ProtocolRepository
	dayRepo      domain.DayRecordRepository
	streakRepo   domain.StreakRepository
	worker       *workers.RepairWorker
	now          func() time.Time
}

func NewDayService(pRepo domain.ProtocolRepository, dRepo domain.DayRecordRepository, sRepo domain.StreakRepository, worker *workers.RepairWorker, now func() time.Time) *DayService {
	return &DayService{
		protocolRepo: pRepo,
		dayRepo:      dRepo,
		streakRepo:   sRepo,
		worker:       worker,
		now:          now,
	}
}

type TodayView struct {
	Date      time.Time       `json:"date"`
	Tasks     []domain.Task   `json:"tasks"`
	Completed map[string]bool `json:"completed"`
	Streak    int             `json:"streak"`
}

type ToggleResult struct {
	Completed    map[string]bool `json:"completed"`
	AllCompleted bool            `json:"all_completed"`
	Streak       int             `json:"streak"`
}

// LoadToday is the session-start transition. On the first visit of a calendar
// day it evaluates streak continuity against yesterday, resetting a run whose
// last fully-completed day is older than yesterday, and lazily persists an
// empty record for today. On any later visit the same day it returns the
// stored record untouched and performs no streak writes. A run whose last
// completed day is today counts as already continued, never as missed.
func (s *DayService) LoadToday(ctx context.Context, userID string) (*TodayView, error) {
	today := domain.DayOf(s.now())

	protocol, err := s.protocolRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	streak, err := s.streakRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrStreakNotFound) {
			return nil, fmt.Errorf("day service: failed to load streak: %w", err)
		}
		streak = domain.NewStreakState()
	}

	record, err := s.dayRepo.Get(ctx, userID, today)
	switch {
	case err == nil:
		// Already visited today: the streak was settled on first load.
	case errors.Is(err, domain.ErrDayRecordNotFound):
		if streak.ShouldReset(today) {
			streak.Reset()
			if err := s.streakRepo.Set(ctx, userID, streak); err != nil {
				return nil, fmt.Errorf("day service: failed to reset streak: %w", err)
			}
		}

		record = domain.NewDayRecord(today)
		if err := s.dayRepo.Put(ctx, userID, record); err != nil {
			return nil, fmt.Errorf("day service: failed to create day record: %w", err)
		}
	default:
		return nil, fmt.Errorf("day service: failed to load day record: %w", err)
	}

	s.worker.Enqueue(userID)

	return &TodayView{
		Date:      today,
		Tasks:     protocol.Tasks,
		Completed: record.Completed,
		Streak:    streak.CurrentStreak,
	}, nil
}

// ToggleTask flips one task's completion flag for today and persists the
// record before touching the streak, so a crash between the two writes can
// only under-report the streak (the repair worker replays it). When the flip
// completes the whole protocol the streak advances; a day already counted is
// not counted twice, so un-toggling and re-toggling cannot inflate the run.
func (s *DayService) ToggleTask(ctx context.Context, userID, taskID string) (*ToggleResult, error) {
	today := domain.DayOf(s.now())

	protocol, err := s.protocolRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !protocol.HasTask(taskID) {
		return nil, domain.ErrTaskNotFound
	}

	record, err := s.dayRepo.Get(ctx, userID, today)
	if err != nil {
		if !errors.Is(err, domain.ErrDayRecordNotFound) {
			return nil, fmt.Errorf("day service: failed to load day record: %w", err)
		}
		record = domain.NewDayRecord(today)
	}

	record.Toggle(taskID)

	if err := s.dayRepo.Put(ctx, userID, record); err != nil {
		return nil, fmt.Errorf("day service: failed to save day record: %w", err)
	}

	streak, err := s.streakRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrStreakNotFound) {
			return nil, fmt.Errorf("day service: failed to load streak: %w", err)
		}
		streak = domain.NewStreakState()
	}

	result := &ToggleResult{
		Completed: record.Completed,
		Streak:    streak.CurrentStreak,
	}

	if protocol.AllCompleted(record.Completed) {
		result.Streak = streak.Advance(today)
		if err := s.streakRepo.Set(ctx, userID, streak); err != nil {
			return nil, fmt.Errorf("day service: failed to advance streak: %w", err)
		}
		result.AllCompleted = true
	}

	return result, nil
}
