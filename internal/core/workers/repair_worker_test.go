package workers

import (
	"context"
	"testing"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type stubProtocolRepo struct {
	protocol *domain.Protocol
}

func (s *stubProtocolRepo) Load(ctx context.Context, userID string) (*domain.Protocol, error) {
	if s.protocol == nil {
		return nil, domain.ErrProtocolNotFound
	}
	return s.protocol, nil
}

type stubDayRepo struct {
	record *domain.DayRecord
}

func (s *stubDayRepo) Get(ctx context.Context, userID string, day time.Time) (*domain.DayRecord, error) {
	if s.record == nil || !domain.SameDay(s.record.Date, day) {
		return nil, domain.ErrDayRecordNotFound
	}
	return s.record, nil
}

type stubStreakRepo struct {
	state    *domain.StreakState
	setCalls int
}

func (s *stubStreakRepo) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	if s.state == nil {
		return nil, domain.ErrStreakNotFound
	}
	clone := *s.state
	return &clone, nil
}

func (s *stubStreakRepo) Set(ctx context.Context, userID string, state *domain.StreakState) error {
	s.setCalls++
	clone := *state
	s.state = &clone
	return nil
}

func fixedClock() time.Time { return day0 }

func newTestWorker(p *domain.Protocol, rec *domain.DayRecord, st *domain.StreakState) (*RepairWorker, *stubStreakRepo) {
	streaks := &stubStreakRepo{state: st}
	w := NewRepairWorker(&stubProtocolRepo{protocol: p}, &stubDayRepo{record: rec}, streaks, fixedClock)
	return w, streaks
}

func testProtocol(t *testing.T) *domain.Protocol {
	t.Helper()
	p, err := domain.NewProtocol(21, day0, []domain.TaskInput{{Name: "A"}, {Name: "B"}})
	require.NoError(t, err)
	return p
}

func TestRepairWorker_ProcessJob(t *testing.T) {
	ctx := context.Background()

	t.Run("Replays a missing streak advance for a fully completed day", func(t *testing.T) {
		yesterday := day0.AddDate(0, 0, -1)
		rec := &domain.DayRecord{Date: day0, Completed: map[string]bool{"1": true, "2": true}}
		st := &domain.StreakState{CurrentStreak: 3, HighestStreak: 3, LastCompleted: &yesterday}

		w, streaks := newTestWorker(testProtocol(t), rec, st)
		w.processJob(ctx, RepairJob{UserID: "u1"})

		assert.Equal(t, 1, streaks.setCalls)
		assert.Equal(t, 4, streaks.state.CurrentStreak)
		assert.Equal(t, 4, streaks.state.HighestStreak)
		assert.True(t, domain.SameDay(*streaks.state.LastCompleted, day0))
	})

	t.Run("Replays a fresh streak when no streak document exists", func(t *testing.T) {
		rec := &domain.DayRecord{Date: day0, Completed: map[string]bool{"1": true, "2": true}}

		w, streaks := newTestWorker(testProtocol(t), rec, nil)
		w.processJob(ctx, RepairJob{UserID: "u1"})

		assert.Equal(t, 1, streaks.setCalls)
		assert.Equal(t, 1, streaks.state.CurrentStreak)
	})

	t.Run("No-op when today is already counted", func(t *testing.T) {
		rec := &domain.DayRecord{Date: day0, Completed: map[string]bool{"1": true, "2": true}}
		st := &domain.StreakState{CurrentStreak: 4, HighestStreak: 4, LastCompleted: &day0}

		w, streaks := newTestWorker(testProtocol(t), rec, st)
		w.processJob(ctx, RepairJob{UserID: "u1"})

		assert.Equal(t, 0, streaks.setCalls)
	})

	t.Run("No-op when the day is not fully complete", func(t *testing.T) {
		rec := &domain.DayRecord{Date: day0, Completed: map[string]bool{"1": true}}

		w, streaks := newTestWorker(testProtocol(t), rec, nil)
		w.processJob(ctx, RepairJob{UserID: "u1"})

		assert.Equal(t, 0, streaks.setCalls)
	})

	t.Run("No-op when there is no record for today", func(t *testing.T) {
		w, streaks := newTestWorker(testProtocol(t), nil, nil)
		w.processJob(ctx, RepairJob{UserID: "u1"})

		assert.Equal(t, 0, streaks.setCalls)
	})

	t.Run("No-op when the user has no protocol", func(t *testing.T) {
		rec := &domain.DayRecord{Date: day0, Completed: map[string]bool{"1": true, "2": true}}

		w, streaks := newTestWorker(nil, rec, nil)
		w.processJob(ctx, RepairJob{UserID: "u1"})

		assert.Equal(t, 0, streaks.setCalls)
	})
}

func TestRepairWorker_EnqueueDropsWhenFull(t *testing.T) {
	w, _ := newTestWorker(nil, nil, nil)

	// Not started: nothing drains the channel, so filling it past capacity
	// must not block.
	for i := 0; i < 150; i++ {
		w.Enqueue("u1")
	}

	assert.Equal(t, 100, len(w.jobs))
}
