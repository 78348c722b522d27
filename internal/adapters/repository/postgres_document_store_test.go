package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monkmode/tracker/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "monk_user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "secret"
	}
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "monk_db"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS documents (
            path       TEXT PRIMARY KEY,
            data       JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	require.NoError(t, err, "Failed to create documents table")

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id            TEXT PRIMARY KEY,
            email         TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at    TIMESTAMPTZ NOT NULL,
            updated_at    TIMESTAMPTZ NOT NULL
        )`)
	require.NoError(t, err, "Failed to create users table")

	return db
}

func cleanupDocuments(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE documents")
	require.NoError(t, err, "Failed to clean up documents table")
}

func TestPostgresDocumentStore_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanupDocuments(t, db)
	defer cleanupDocuments(t, db)

	store := NewPostgresDocumentStore(db)
	ctx := context.Background()

	t.Run("Get on a missing path returns ErrDocumentNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "users/ghost/stats/streak")
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("Set then Get round-trips the document", func(t *testing.T) {
		doc := map[string]any{"currentStreak": 3, "highestStreak": 7}
		require.NoError(t, store.Set(ctx, "users/u1/stats/streak", doc, false))

		raw, err := store.Get(ctx, "users/u1/stats/streak")
		require.NoError(t, err)

		var got map[string]int
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, map[string]int{"currentStreak": 3, "highestStreak": 7}, got)
	})

	t.Run("Non-merge Set replaces the whole document", func(t *testing.T) {
		path := "users/u2/protocol/current"
		require.NoError(t, store.Set(ctx, path, map[string]any{"duration": 21, "legacy": true}, false))
		require.NoError(t, store.Set(ctx, path, map[string]any{"duration": 45}, false))

		raw, err := store.Get(ctx, path)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.NotContains(t, got, "legacy")
		assert.EqualValues(t, 45, got["duration"])
	})

	t.Run("Merge Set patches top-level fields and keeps the rest", func(t *testing.T) {
		path := "users/u3/dailyTasks/2025-03-10"
		require.NoError(t, store.Set(ctx, path,
			map[string]any{"date": "2025-03-10", "completedTasks": map[string]bool{"1": true}}, false))
		require.NoError(t, store.Set(ctx, path,
			map[string]any{"completedTasks": map[string]bool{"1": true, "2": true}}, true))

		raw, err := store.Get(ctx, path)
		require.NoError(t, err)

		var got struct {
			Date      string          `json:"date"`
			Completed map[string]bool `json:"completedTasks"`
		}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "2025-03-10", got.Date)
		assert.Equal(t, map[string]bool{"1": true, "2": true}, got.Completed)
	})

	t.Run("Merge Set on a missing path behaves like a plain Set", func(t *testing.T) {
		path := "users/u4/stats/streak"
		require.NoError(t, store.Set(ctx, path, map[string]any{"currentStreak": 1}, true))

		raw, err := store.Get(ctx, path)
		require.NoError(t, err)

		var got map[string]int
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, 1, got["currentStreak"])
	})

	t.Run("Entity repositories work end to end over postgres", func(t *testing.T) {
		streaks := NewStoreStreakRepository(store)

		last := testDay
		require.NoError(t, streaks.Set(ctx, "u5", &domain.StreakState{CurrentStreak: 4, HighestStreak: 9, LastCompleted: &last}))
		require.NoError(t, streaks.Set(ctx, "u5", &domain.StreakState{CurrentStreak: 0, HighestStreak: 9}))

		loaded, err := streaks.Get(ctx, "u5")
		require.NoError(t, err)
		assert.Equal(t, 0, loaded.CurrentStreak)
		assert.Equal(t, 9, loaded.HighestStreak)
		assert.Nil(t, loaded.LastCompleted,
			"jsonb merge must carry the explicit null over the stale date")
	})
}
