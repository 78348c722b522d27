package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/monkmode/tracker/internal/adapters/cache"
	adapterHTTP "github.com/monkmode/tracker/internal/adapters/handler/http"
	"github.com/monkmode/tracker/internal/adapters/repository"
	"github.com/monkmode/tracker/internal/core/domain"
	"github.com/monkmode/tracker/internal/core/services"
	"github.com/monkmode/tracker/internal/core/workers"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func ensureSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id            TEXT PRIMARY KEY,
            email         TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at    TIMESTAMPTZ NOT NULL,
            updated_at    TIMESTAMPTZ NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("users table: %w", err)
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS documents (
            path       TEXT PRIMARY KEY,
            data       JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	if err != nil {
		return fmt.Errorf("documents table: %w", err)
	}

	return nil
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	serverPort := getEnv("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET must be set")
	}
	jwtIssuer := getEnv("JWT_ISSUER", "monkmode-tracker")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := ensureSchema(db); err != nil {
		log.Fatalf("Critical: Failed to ensure schema: %v", err)
	}

	log.Println("Database connected successfully.")

	rdb, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost"),
		getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		rdb = nil
	}

	store := repository.NewPostgresDocumentStore(db)

	userRepo := repository.NewPostgresUserRepository(db)
	var protocolRepo domain.ProtocolRepository = repository.NewStoreProtocolRepository(store)
	if rdb != nil {
		protocolRepo = repository.NewCachedProtocolRepository(protocolRepo, rdb)
	}
	dayRepo := repository.NewStoreDayRecordRepository(store)
	streakRepo := repository.NewStoreStreakRepository(store)

	repairWorker := workers.NewRepairWorker(protocolRepo, dayRepo, streakRepo, time.Now)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	repairWorker.Start(workerCtx)

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(jwtSecret, jwtIssuer, 24*time.Hour, userRepo)
	protocolService := services.NewProtocolService(protocolRepo, time.Now)
	dayService := services.NewDayService(protocolRepo, dayRepo, streakRepo, repairWorker, time.Now)
	statsService := services.NewStatsService(protocolRepo, dayRepo, streakRepo, time.Now)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService),
		ProtocolHandler: adapterHTTP.NewProtocolHandler(protocolService),
		DayHandler:      adapterHTTP.NewDayHandler(dayService),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService),
		QuoteHandler:    adapterHTTP.NewQuoteHandler(),
		TokenService:    tokenService,
		DB:              db,
		Redis:           rdb,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Monk Mode Tracker running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	stopWorker()

	log.Println("Server stopped gracefully.")
}
