package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/monkmode/tracker/internal/adapters/handler/http"
	"github.com/monkmode/tracker/internal/core/domain"
	"github.com/monkmode/tracker/internal/core/services"
)

type statsFixture struct {
	router  *gin.Engine
	days    *stubDayRepo
	streaks *stubStreakRepo
}

func setupStatsRouter(t *testing.T) *statsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	protocols := newStubProtocolRepo()
	days := newStubDayRepo()
	streaks := newStubStreakRepo()

	p, err := domain.NewProtocol(21, domain.DayOf(testNow), []domain.TaskInput{
		{Name: "Meditate"},
		{Name: "Read"},
	})
	require.NoError(t, err)
	protocols.store["user-1"] = p

	svc := services.NewStatsService(protocols, days, streaks, testClock)
	handler := adapterHTTP.NewStatsHandler(svc)

	r := gin.New()
	r.Use(identityMiddleware())
	handler.RegisterRoutes(r.Group("/api/v1"))

	return &statsFixture{router: r, days: days, streaks: streaks}
}

func TestGetStreakStats(t *testing.T) {
	t.Run("Success: 200 OK with zeros for a fresh user", func(t *testing.T) {
		f := setupStatsRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/stats/streak", nil)
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var stats services.StreakStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 0, stats.CurrentStreak)
		assert.Equal(t, 0, stats.HighestStreak)
		assert.Equal(t, 21, stats.DurationDays)
		assert.Equal(t, 1, stats.DaysElapsed)
	})

	t.Run("Success: 200 OK with stored streak", func(t *testing.T) {
		f := setupStatsRouter(t)

		last := domain.DayOf(testNow)
		f.streaks.store["user-1"] = &domain.StreakState{CurrentStreak: 5, HighestStreak: 7, LastCompleted: &last}

		req, _ := http.NewRequest("GET", "/api/v1/stats/streak", nil)
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"current_streak":5`)
		assert.Contains(t, w.Body.String(), `"last_completed":"2025-03-10"`)
	})

	t.Run("Fail: 404 when no protocol configured", func(t *testing.T) {
		f := setupStatsRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/stats/streak", nil)
		req.Header.Set("X-User-ID", "user-2")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetHistory(t *testing.T) {
	t.Run("Success: 200 OK over an explicit range", func(t *testing.T) {
		f := setupStatsRouter(t)

		rec := domain.NewDayRecord(domain.DayOf(testNow))
		rec.Toggle("1")
		rec.Toggle("2")
		require.NoError(t, f.days.Put(context.Background(), "user-1", rec))

		req, _ := http.NewRequest("GET", "/api/v1/stats/history?start_date=2025-03-08&end_date=2025-03-10", nil)
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var history services.History
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
		require.Len(t, history.Days, 3)
		assert.Equal(t, 1, history.PerfectDays)
		assert.True(t, history.Days[2].AllDone)
		assert.Equal(t, 0, history.Days[0].Completed)
	})

	t.Run("Fail: 400 on malformed dates", func(t *testing.T) {
		f := setupStatsRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/stats/history?start_date=10-03-2025", nil)
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 when start is after end", func(t *testing.T) {
		f := setupStatsRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/stats/history?start_date=2025-03-11&end_date=2025-03-10", nil)
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 when the range exceeds a year", func(t *testing.T) {
		f := setupStatsRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/stats/history?start_date=2023-01-01&end_date=2025-03-10", nil)
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
