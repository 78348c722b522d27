package workers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
)

type ProtocolRepository interface {
	Load(ctx context.Context, userID string) (*domain.Protocol, error)
}

type DayRecordRepository interface {
	Get(ctx context.Context, userID string, day time.Time) (*domain.DayRecord, error)
}

type StreakRepository interface {
	Get(ctx context.Context, userID string) (*domain.StreakState, error)
	Set(ctx context.Context, userID string, s *domain.StreakState) error
}

type RepairJob struct {
	UserID string
}

// RepairWorker closes the gap left by the non-atomic record-then-streak write
// pair: a crash after the day record is persisted but before the streak
// advances leaves today marked fully complete while the streak still points
// at an older day. Jobs re-derive the streak from today's record and replay
// the missing advance.
type RepairWorker struct {
	protocolRepo ProtocolRepository
	dayRepo      DayRecordRepository
	streakRepo   StreakRepository
	jobs         chan RepairJob
	now          func() time.Time
}

func NewRepairWorker(pRepo ProtocolRepository, dRepo DayRecordRepository, sRepo StreakRepository, now func() time.Time) *RepairWorker {
	return &RepairWorker{
		protocolRepo: pRepo,
		dayRepo:      dRepo,
		streakRepo:   sRepo,
		jobs:         make(chan RepairJob, 100),
		now:          now,
	}
}

func (w *RepairWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak Repair Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak Repair Worker shutting down...")
				return
			}
		}
	}()
}

func (w *RepairWorker) Enqueue(userID string) {
	select {
	case w.jobs <- RepairJob{UserID: userID}:
	default:
		log.Printf("Streak Repair Worker queue full! Dropping job for user %s", userID)
	}
}

func (w *RepairWorker) processJob(ctx context.Context, job RepairJob) {
	today := domain.DayOf(w.now())

	record, err := w.dayRepo.Get(ctx, job.UserID, today)
	if err != nil {
		if !errors.Is(err, domain.ErrDayRecordNotFound) {
			log.Printf("Repair Worker error fetching day record for %s: %v", job.UserID, err)
		}
		return
	}

	protocol, err := w.protocolRepo.Load(ctx, job.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrProtocolNotFound) {
			log.Printf("Repair Worker error fetching protocol for %s: %v", job.UserID, err)
		}
		return
	}

	if !protocol.AllCompleted(record.Completed) {
		return
	}

	streak, err := w.streakRepo.Get(ctx, job.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrStreakNotFound) {
			log.Printf("Repair Worker error fetching streak for %s: %v", job.UserID, err)
			return
		}
		streak = domain.NewStreakState()
	}

	if streak.LastCompleted != nil && domain.SameDay(*streak.LastCompleted, today) {
		return
	}

	newStreak := streak.Advance(today)
	if err := w.streakRepo.Set(ctx, job.UserID, streak); err != nil {
		log.Printf("Repair Worker failed to replay streak for %s: %v", job.UserID, err)
		return
	}

	log.Printf("Streak replayed for %s: Current=%d, Highest=%d", job.UserID, newStreak, streak.HighestStreak)
}
