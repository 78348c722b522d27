package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	// Create persists a new user account.
	Create(ctx context.Context, user *User) error

	// GetByEmail retrieves a user by normalized email address.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID retrieves a user by its stable identifier.
	GetByID(ctx context.Context, id string) (*User, error)
}

type ProtocolRepository interface {
	// Load retrieves the user's current protocol, or ErrProtocolNotFound.
	// No side effects.
	Load(ctx context.Context, userID string) (*Protocol, error)

	// Save fully overwrites the protocol singleton. Create and edit use the
	// same operation; callers renumber task ids before calling.
	Save(ctx context.Context, userID string, p *Protocol) error
}

type StreakRepository interface {
	// Get retrieves the streak singleton, or ErrStreakNotFound if the user
	// has never completed a day.
	Get(ctx context.Context, userID string) (*StreakState, error)

	// Set writes all three streak fields together (merge semantics at the
	// document level; unrelated fields are untouched).
	Set(ctx context.Context, userID string, s *StreakState) error
}

type DayRecordRepository interface {
	// Get retrieves the completion record for a calendar day, or
	// ErrDayRecordNotFound on a day the user has not visited yet.
	Get(ctx context.Context, userID string, day time.Time) (*DayRecord, error)

	// Put upserts the record for its day. Each write is atomic for the
	// single document; there is no cross-document atomicity with streak
	// writes.
	Put(ctx context.Context, userID string, rec *DayRecord) error
}
