package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrProtocolNotFound = errors.New("protocol not found")
	ErrNoDuration       = errors.New("protocol duration must be selected")
	ErrInvalidDuration  = errors.New("protocol duration cannot be negative")
	ErrNoTasks          = errors.New("protocol needs at least one task with a name")
	ErrTaskNameTooLong  = errors.New("task name is too long (max 100 chars)")
	ErrTaskDescTooLong  = errors.New("task description is too long (max 500 chars)")
	ErrTaskNotFound     = errors.New("task not found in protocol")
)

const (
	// DurationUnlimited is the sentinel for a protocol with no end date.
	DurationUnlimited = 0

	MaxTaskNameLen = 100
	MaxTaskDescLen = 500
)

// Task is one daily obligation inside a protocol. IDs are a dense 1-based
// sequence re-issued on every edit; they are not stable across edits.
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TaskInput is a task as submitted from a setup or edit form, before
// filtering and renumbering.
type TaskInput struct {
	Name        string
	Description string
}

// Protocol is the user's fixed set of daily tasks plus overall duration.
// There is exactly one per user ("current").
type Protocol struct {
	DurationDays int       `json:"duration"`
	StartDate    time.Time `json:"start_date"`
	Tasks        []Task    `json:"tasks"`
}

// NewProtocol builds a protocol from raw form input: tasks with an empty
// trimmed name are dropped, survivors are renumbered 1..N in their submitted
// order. StartDate is set by the caller so edits can preserve the original.
func NewProtocol(durationDays int, startDate time.Time, inputs []TaskInput) (*Protocol, error) {
	if durationDays < 0 {
		return nil, ErrInvalidDuration
	}

	tasks := make([]Task, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		if len(name) > MaxTaskNameLen {
			return nil, ErrTaskNameTooLong
		}

		desc := strings.TrimSpace(in.Description)
		if len(desc) > MaxTaskDescLen {
			return nil, ErrTaskDescTooLong
		}

		tasks = append(tasks, Task{
			ID:          strconv.Itoa(len(tasks) + 1),
			Name:        name,
			Description: desc,
		})
	}

	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	return &Protocol{
		DurationDays: durationDays,
		StartDate:    DayOf(startDate),
		Tasks:        tasks,
	}, nil
}

// HasTask reports whether id belongs to the current task sequence.
func (p *Protocol) HasTask(id string) bool {
	for _, t := range p.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// AllCompleted is true when every task in the protocol has a true entry in
// the completion map. Tasks with no entry count as incomplete.
func (p *Protocol) AllCompleted(completed map[string]bool) bool {
	if len(p.Tasks) == 0 {
		return false
	}
	for _, t := range p.Tasks {
		if !completed[t.ID] {
			return false
		}
	}
	return true
}

// DaysElapsed counts completed calendar days since the protocol started,
// with the start day itself as day 1.
func (p *Protocol) DaysElapsed(today time.Time) int {
	start := DayOf(p.StartDate)
	day := DayOf(today)
	if day.Before(start) {
		return 0
	}
	return int(day.Sub(start).Hours()/24) + 1
}

// DaysRemaining returns how many protocol days are left. The second return
// is false for unlimited protocols, which never run out.
func (p *Protocol) DaysRemaining(today time.Time) (int, bool) {
	if p.DurationDays == DurationUnlimited {
		return 0, false
	}
	remaining := p.DurationDays - p.DaysElapsed(today)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
