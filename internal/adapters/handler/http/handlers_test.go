package http_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/monkmode/tracker/internal/adapters/handler/http/middleware"
	"github.com/monkmode/tracker/internal/core/domain"
)

// Fixed clock for day-boundary determinism across handler tests.
var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// identityMiddleware lifts X-User-ID into the auth context key so handlers
// can be tested without minting JWTs.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-User-ID"); id != "" {
			c.Set(middleware.ContextUserIDKey, id)
		}
		c.Next()
	}
}

type stubProtocolRepo struct {
	store map[string]*domain.Protocol
}

func newStubProtocolRepo() *stubProtocolRepo {
	return &stubProtocolRepo{store: make(map[string]*domain.Protocol)}
}

func (r *stubProtocolRepo) Load(ctx context.Context, userID string) (*domain.Protocol, error) {
	p, ok := r.store[userID]
	if !ok {
		return nil, domain.ErrProtocolNotFound
	}
	return p, nil
}

func (r *stubProtocolRepo) Save(ctx context.Context, userID string, p *domain.Protocol) error {
	r.store[userID] = p
	return nil
}

type stubDayRepo struct {
	store map[string]*domain.DayRecord
}

func newStubDayRepo() *stubDayRepo {
	return &stubDayRepo{store: make(map[string]*domain.DayRecord)}
}

func (r *stubDayRepo) key(userID string, day time.Time) string {
	return userID + "|" + domain.DayOf(day).Format(domain.DateLayout)
}

func (r *stubDayRepo) Get(ctx context.Context, userID string, day time.Time) (*domain.DayRecord, error) {
	rec, ok := r.store[r.key(userID, day)]
	if !ok {
		return nil, domain.ErrDayRecordNotFound
	}
	return rec, nil
}

func (r *stubDayRepo) Put(ctx context.Context, userID string, rec *domain.DayRecord) error {
	r.store[r.key(userID, rec.Date)] = rec
	return nil
}

type stubStreakRepo struct {
	store map[string]*domain.StreakState
}

func newStubStreakRepo() *stubStreakRepo {
	return &stubStreakRepo{store: make(map[string]*domain.StreakState)}
}

func (r *stubStreakRepo) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	s, ok := r.store[userID]
	if !ok {
		return nil, domain.ErrStreakNotFound
	}
	return s, nil
}

func (r *stubStreakRepo) Set(ctx context.Context, userID string, s *domain.StreakState) error {
	r.store[userID] = s
	return nil
}
