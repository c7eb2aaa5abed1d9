// Package postgres provides the read-side storage adapter backed by the
// product's Postgres database with the pgvector extension. It serves the
// similarity search over document chunks and the metadata joins (files,
// projects, membership). Writing chunks is the ingestion pipeline's job;
// this adapter never mutates the corpus.
package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver

	"github.com/custodia-labs/veritas/internal/core/ports/driven"
)

// Store is a unified Postgres-based storage that provides access to the
// read-side store interfaces through wrapper types sharing one pool.
type Store struct {
	db *sqlx.DB
}

// Open connects to the database and verifies the connection.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an existing connection pool. Useful for testing.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ChunkIndex returns the vector index interface.
func (s *Store) ChunkIndex(dimensions int) driven.VectorIndex {
	return &chunkIndex{db: s.db, dimensions: dimensions}
}

// FileStore returns the file metadata interface.
func (s *Store) FileStore() driven.FileStore {
	return &fileStore{db: s.db}
}

// ProjectStore returns the project metadata interface.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{db: s.db}
}
