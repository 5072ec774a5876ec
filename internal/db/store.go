// Package db persists datasets and their computed result payloads in
// Postgres. The result payload is stored as the JSON array the pipeline
// produced; it is re-normalized on every load, never trusted as-is.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a dataset id has no stored row.
var ErrNotFound = errors.New("db: dataset not found")

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Dataset represents one uploaded and processed dataset.
type Dataset struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	SourceFile *string   `json:"source_file,omitempty"`
	RowCount   int       `json:"row_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const insertDatasetSQL = `
    INSERT INTO izumi.datasets (id, name, source_file, row_count, created_at, updated_at)
    VALUES ($1, $2, $3, $4, NOW(), NOW())
    RETURNING id, name, source_file, row_count, created_at, updated_at
`

// CreateDataset inserts a dataset record and returns the stored row.
func (s *Store) CreateDataset(ctx context.Context, name string, sourceFile *string, rowCount int) (*Dataset, error) {
	row := s.pool.QueryRow(ctx, insertDatasetSQL, uuid.New(), name, sourceFile, rowCount)

	var d Dataset
	if err := row.Scan(&d.ID, &d.Name, &d.SourceFile, &d.RowCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

const listDatasetsSQL = `
    SELECT id, name, source_file, row_count, created_at, updated_at
    FROM izumi.datasets
    ORDER BY created_at DESC
    LIMIT $1
`

// ListDatasets returns the most recent datasets, newest first.
func (s *Store) ListDatasets(ctx context.Context, limit int) ([]Dataset, error) {
	rows, err := s.pool.Query(ctx, listDatasetsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	datasets := make([]Dataset, 0)
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.ID, &d.Name, &d.SourceFile, &d.RowCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}

const getDatasetSQL = `
    SELECT id, name, source_file, row_count, created_at, updated_at
    FROM izumi.datasets
    WHERE id = $1
`

// GetDataset returns one dataset by id, or ErrNotFound.
func (s *Store) GetDataset(ctx context.Context, id uuid.UUID) (*Dataset, error) {
	row := s.pool.QueryRow(ctx, getDatasetSQL, id)

	var d Dataset
	if err := row.Scan(&d.ID, &d.Name, &d.SourceFile, &d.RowCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

const upsertResultsSQL = `
    INSERT INTO izumi.dataset_results (dataset_id, payload, updated_at)
    VALUES ($1, $2, NOW())
    ON CONFLICT (dataset_id) DO UPDATE
    SET payload = EXCLUDED.payload,
        updated_at = NOW()
`

// SaveResults stores the serialized result array for a dataset.
func (s *Store) SaveResults(ctx context.Context, datasetID uuid.UUID, payload []byte) error {
	_, err := s.pool.Exec(ctx, upsertResultsSQL, datasetID, payload)
	return err
}

const loadResultsSQL = `
    SELECT payload
    FROM izumi.dataset_results
    WHERE dataset_id = $1
`

// LoadResults returns the raw persisted payload for a dataset. The caller is
// expected to run it through the rehydrator before use.
func (s *Store) LoadResults(ctx context.Context, datasetID uuid.UUID) ([]byte, error) {
	row := s.pool.QueryRow(ctx, loadResultsSQL, datasetID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

const deleteDatasetSQL = `
    DELETE FROM izumi.datasets
    WHERE id = $1
`

// DeleteDataset removes a dataset and (via cascade) its results.
func (s *Store) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, deleteDatasetSQL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
