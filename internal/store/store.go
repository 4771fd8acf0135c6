// Package store provides PostgreSQL access to the free-zone knowledge base.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEntityNotFound is returned when a free zone does not exist in the store.
var ErrEntityNotFound = errors.New("free zone not found")

// Entity is a free-zone profile row.
type Entity struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SourceURL string `json:"source_url,omitempty"`
}

// Record is one stored knowledge entry for a free zone. Category is the raw
// label assigned at ingestion time; the coverage analyzer maps it to taxonomy
// fields.
type Record struct {
	ID       int64  `json:"id"`
	EntityID int64  `json:"entity_id"`
	Category string `json:"category"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
}

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
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

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// GetEntity retrieves a free zone by ID. Returns ErrEntityNotFound when the
// row does not exist.
func (db *DB) GetEntity(ctx context.Context, id int64) (*Entity, error) {
	var e Entity
	var sourceURL *string
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, source_url FROM free_zones WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Name, &sourceURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("free zone %d: %w", id, ErrEntityNotFound)
		}
		return nil, fmt.Errorf("failed to get free zone %d: %w", id, err)
	}
	if sourceURL != nil {
		e.SourceURL = *sourceURL
	}
	return &e, nil
}

// ListEntities retrieves all free zones ordered by ID.
func (db *DB) ListEntities(ctx context.Context) ([]Entity, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, source_url FROM free_zones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list free zones: %w", err)
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		var e Entity
		var sourceURL *string
		if err := rows.Scan(&e.ID, &e.Name, &sourceURL); err != nil {
			return nil, fmt.Errorf("failed to scan free zone: %w", err)
		}
		if sourceURL != nil {
			e.SourceURL = *sourceURL
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// ListRecords retrieves all knowledge records for a free zone.
func (db *DB) ListRecords(ctx context.Context, entityID int64) ([]Record, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, freezone_id, category, COALESCE(title, ''), COALESCE(content, '')
		 FROM knowledge_records WHERE freezone_id = $1 ORDER BY id`,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for free zone %d: %w", entityID, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.EntityID, &r.Category, &r.Title, &r.Content); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveAuditReport persists a completed audit result as a JSON artifact keyed
// by run ID. Re-saving the same run overwrites the previous artifact.
func (db *DB) SaveAuditReport(ctx context.Context, runID uuid.UUID, entityID int64, state string, report any) error {
	jsonBytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal audit report: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO audit_reports (run_id, freezone_id, state, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id) DO UPDATE SET state = $3, content = $4, created_at = NOW()`,
		runID, entityID, state, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit report %s: %w", runID, err)
	}
	return nil
}

// GetAuditReport retrieves a persisted audit report by run ID. Returns nil
// content when no report exists.
func (db *DB) GetAuditReport(ctx context.Context, runID uuid.UUID) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM audit_reports WHERE run_id = $1`,
		runID,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get audit report %s: %w", runID, err)
	}
	return content, nil
}
