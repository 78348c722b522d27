package domain

import (
	"errors"
	"time"
)

var (
	ErrDayRecordNotFound = errors.New("daily record not found")
	ErrStreakNotFound    = errors.New("streak state not found")
)

// DateLayout is the day-granularity key format used for daily documents.
const DateLayout = "2006-01-02"

// DayOf truncates an instant to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two instants fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// IsYesterdayOf reports whether prev is exactly one calendar day before day.
func IsYesterdayOf(prev, day time.Time) bool {
	return DayOf(prev).AddDate(0, 0, 1).Equal(DayOf(day))
}

// DayRecord holds one user's per-task completion state for a single calendar
// day. It is created empty on the first visit of the day and never deleted.
type DayRecord struct {
	Date      time.Time       `json:"date"`
	Completed map[string]bool `json:"completed_tasks"`
}

func NewDayRecord(day time.Time) *DayRecord {
	return &DayRecord{
		Date:      DayOf(day),
		Completed: make(map[string]bool),
	}
}

// Toggle flips the completion flag for taskID and returns the new value.
// A task never toggled before counts as incomplete, so its first toggle
// marks it done.
func (r *DayRecord) Toggle(taskID string) bool {
	if r.Completed == nil {
		r.Completed = make(map[string]bool)
	}
	r.Completed[taskID] = !r.Completed[taskID]
	return r.Completed[taskID]
}

// CompletedCount counts tasks currently marked done.
func (r *DayRecord) CompletedCount() int {
	n := 0
	for _, done := range r.Completed {
		if done {
			n++
		}
	}
	return n
}

// StreakState is the per-user streak singleton: the run of consecutive
// fully-completed days and its all-time high-water mark.
type StreakState struct {
	CurrentStreak int        `json:"current_streak"`
	HighestStreak int        `json:"highest_streak"`
	LastCompleted *time.Time `json:"last_completed,omitempty"`
}

func NewStreakState() *StreakState {
	return &StreakState{}
}

// Advance records that every task was completed on day. Completing the day
// after the previous fully-completed day extends the run; any other gap
// starts a fresh run of 1. Re-completing a day already counted is a no-op,
// so un-toggling and re-toggling within the same day cannot double-count.
// Returns the resulting current streak.
func (s *StreakState) Advance(day time.Time) int {
	d := DayOf(day)

	if s.LastCompleted != nil && SameDay(*s.LastCompleted, d) {
		return s.CurrentStreak
	}

	if s.LastCompleted != nil && IsYesterdayOf(*s.LastCompleted, d) {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 1
	}

	if s.CurrentStreak > s.HighestStreak {
		s.HighestStreak = s.CurrentStreak
	}
	s.LastCompleted = &d

	return s.CurrentStreak
}

// ShouldReset reports whether a run is stale on first sight of a new day:
// there is a positive streak whose last completed day is neither yesterday
// nor today itself.
func (s *StreakState) ShouldReset(today time.Time) bool {
	if s.CurrentStreak <= 0 || s.LastCompleted == nil {
		return false
	}
	last := *s.LastCompleted
	if SameDay(last, today) || IsYesterdayOf(last, today) {
		return false
	}
	return true
}

// Reset clears the run after a missed day. The high-water mark survives.
func (s *StreakState) Reset() {
	s.CurrentStreak = 0
	s.LastCompleted = nil
}
