package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
)

type StatsService struct {
	protocolRepo domain.ProtocolRepository
	dayRepo      domain.DayRecordRepository
	streakRepo   domain.StreakRepository
	now          func() time.Time
}

func NewStatsService(pRepo domain.ProtocolRepository, dRepo domain.DayRecordRepository, sRepo domain.StreakRepository, now func() time.Time) *StatsService {
	return &StatsService{
		protocolRepo: pRepo,
		dayRepo:      dRepo,
		streakRepo:   sRepo,
		now:          now,
	}
}

type StreakStats struct {
	CurrentStreak int    `json:"current_streak"`
	HighestStreak int    `json:"highest_streak"`
	LastCompleted string `json:"last_completed,omitempty"`
	DaysElapsed   int    `json:"days_elapsed"`
	DurationDays  int    `json:"duration_days"`
	DaysRemaining *int   `json:"days_remaining,omitempty"`
}

type DayStat struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	AllDone   bool   `json:"all_done"`
}

type History struct {
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	Days           []DayStat `json:"days"`
	PerfectDays    int       `json:"perfect_days"`
	CompletionRate float64   `json:"completion_rate"`
}

// GetStreak combines the streak singleton with protocol progress. A user
// without a streak document yet gets zeros, not an error.
func (s *StatsService) GetStreak(ctx context.Context, userID string) (*StreakStats, error) {
	protocol, err := s.protocolRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	streak, err := s.streakRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrStreakNotFound) {
			return nil, fmt.Errorf("stats service: failed to load streak: %w", err)
		}
		streak = domain.NewStreakState()
	}

	today := s.now()
	stats := &StreakStats{
		CurrentStreak: streak.CurrentStreak,
		HighestStreak: streak.HighestStreak,
		DaysElapsed:   protocol.DaysElapsed(today),
		DurationDays:  protocol.DurationDays,
	}

	if streak.LastCompleted != nil {
		stats.LastCompleted = streak.LastCompleted.Format(domain.DateLayout)
	}

	if remaining, bounded := protocol.DaysRemaining(today); bounded {
		stats.DaysRemaining = &remaining
	}

	return stats, nil
}

// GetHistory walks the date range day by day and reports per-day completion
// against the current task list. Days with no record count as zero; the
// completion rate is the share of fully-completed days.
func (s *StatsService) GetHistory(ctx context.Context, userID string, startDate, endDate time.Time) (*History, error) {
	startDate = domain.DayOf(startDate)
	endDate = domain.DayOf(endDate)

	protocol, err := s.protocolRepo.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := &History{
		StartDate: startDate.Format(domain.DateLayout),
		EndDate:   endDate.Format(domain.DateLayout),
		Days:      make([]DayStat, 0),
	}

	totalDays := 0

	currentDate := startDate
	for !currentDate.After(endDate) {
		stat := DayStat{
			Date:  currentDate.Format(domain.DateLayout),
			Total: len(protocol.Tasks),
		}

		record, err := s.dayRepo.Get(ctx, userID, currentDate)
		switch {
		case err == nil:
			stat.Completed = record.CompletedCount()
			stat.AllDone = protocol.AllCompleted(record.Completed)
		case errors.Is(err, domain.ErrDayRecordNotFound):
		default:
			return nil, fmt.Errorf("stats service: failed to load day record: %w", err)
		}

		if stat.AllDone {
			history.PerfectDays++
		}

		history.Days = append(history.Days, stat)
		totalDays++

		currentDate = currentDate.AddDate(0, 0, 1)
	}

	if totalDays > 0 {
		history.CompletionRate = float64(history.PerfectDays) / float64(totalDays) * 100
	}

	return history, nil
}
