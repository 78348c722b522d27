package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresDocumentStore keeps every document in a single jsonb table keyed by
// path. A merge write relies on the jsonb || operator, which patches top-level
// fields only. That is the same shallow-merge semantics the engine expects
// from a hosted document database.
type PostgresDocumentStore struct {
	db *sqlx.DB
}

func NewPostgresDocumentStore(db *sqlx.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

func (s *PostgresDocumentStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	query := `SELECT data FROM documents WHERE path = $1`

	var data []byte
	if err := s.db.QueryRowContext(ctx, query, path).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("document get failed: %w", err)
	}

	return json.RawMessage(data), nil
}

func (s *PostgresDocumentStore) Set(ctx context.Context, path string, doc any, merge bool) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
        INSERT INTO documents (path, data, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (path) DO UPDATE
        SET data = EXCLUDED.data, updated_at = NOW()`

	if merge {
		query = `
        INSERT INTO documents (path, data, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (path) DO UPDATE
        SET data = documents.data || EXCLUDED.data, updated_at = NOW()`
	}

	if _, err := s.db.ExecContext(ctx, query, path, data); err != nil {
		return fmt.Errorf("document set failed: %w", err)
	}

	return nil
}
