// Package db provides PostgreSQL storage for the audit trail of validation
// and formatting runs.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS document_runs (
	id              UUID PRIMARY KEY,
	kind            TEXT NOT NULL,
	file_name       TEXT NOT NULL DEFAULT '',
	sha256          TEXT NOT NULL,
	catalog_version TEXT NOT NULL,
	is_valid        BOOLEAN NOT NULL,
	percentage      DOUBLE PRECISION NOT NULL,
	findings        JSONB NOT NULL DEFAULT '[]',
	changes         JSONB NOT NULL DEFAULT '[]',
	error_message   TEXT,
	duration_ms     BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS document_runs_sha256_idx ON document_runs (sha256);
CREATE INDEX IF NOT EXISTS document_runs_created_at_idx ON document_runs (created_at DESC);
`

// EnsureSchema creates the audit tables when they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const runColumns = `id, kind, file_name, sha256, catalog_version, is_valid, percentage,
	findings, changes, error_message, duration_ms, created_at`

// SaveRun stores one run and returns the stored record.
func (db *DB) SaveRun(ctx context.Context, input *RunInput) (*Run, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	id := input.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	findingsJSON, err := json.Marshal(nonNil(input.Findings))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal findings: %w", err)
	}
	changesJSON, err := json.Marshal(nonNil(input.Changes))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal changes: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO document_runs (id, kind, file_name, sha256, catalog_version, is_valid,
		                            percentage, findings, changes, error_message, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+runColumns,
		id, input.Kind, input.FileName, input.SHA256, input.CatalogVersion, input.Valid,
		input.Percentage, findingsJSON, changesJSON, input.ErrorMessage, input.DurationMs,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run by ID. A missing run is (nil, nil).
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM document_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRunsBySHA256 returns the runs of one document, newest first.
func (db *DB) ListRunsBySHA256(ctx context.Context, sha256 string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM document_runs WHERE sha256 = $1 ORDER BY created_at DESC LIMIT $2`,
		sha256, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var findingsJSON, changesJSON []byte
	err := row.Scan(&run.ID, &run.Kind, &run.FileName, &run.SHA256, &run.CatalogVersion,
		&run.Valid, &run.Percentage, &findingsJSON, &changesJSON, &run.ErrorMessage,
		&run.DurationMs, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := run.decode(findingsJSON, changesJSON); err != nil {
		return nil, err
	}
	return &run, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
