// internal/adapter/storage/snapshot_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"villrein/internal/domain/track"
)

const schema = `
	CREATE TABLE IF NOT EXISTS raw_documents (
		name       TEXT PRIMARY KEY,
		body       JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS snapshots (
		name       TEXT PRIMARY KEY,
		body       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// PostgresStore keeps the same flat JSON documents as FileStore, one row
// per file name
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new postgres-backed store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// EnsureSchema creates the store's tables if they are missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// ListYears returns the distinct year prefixes of raw document names
func (s *PostgresStore) ListYears(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM raw_documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("error scanning name: %w", err)
		}
		names = append(names, name+jsonExt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating names: %w", err)
	}

	return yearsOf(names), nil
}

// LoadRaw returns every raw document whose name contains year
func (s *PostgresStore) LoadRaw(ctx context.Context, year string) ([]track.RawDocument, error) {
	rows, err := s.db.Query(ctx, `
		SELECT name, body
		FROM raw_documents
		WHERE strpos(name, $1) > 0
		ORDER BY name
	`, year)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var docs []track.RawDocument
	for rows.Next() {
		var name string
		var body []byte
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}

		var doc track.RawDocument
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", name, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// SaveRaw upserts a raw document
func (s *PostgresStore) SaveRaw(ctx context.Context, name string, doc track.RawDocument) error {
	return s.upsert(ctx, `
		INSERT INTO raw_documents (name, body) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET body = $2
	`, name, doc)
}

// SaveSnapshot upserts a derived snapshot
func (s *PostgresStore) SaveSnapshot(ctx context.Context, name string, v interface{}) error {
	return s.upsert(ctx, `
		INSERT INTO snapshots (name, body) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET body = $2, updated_at = now()
	`, name, v)
}

func (s *PostgresStore) upsert(ctx context.Context, query, name string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshaling %s: %w", name, err)
	}

	if _, err := s.db.Exec(ctx, query, name, body); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}
