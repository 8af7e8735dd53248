// Package duckdb provides a queryable index of annotated masterfiles.
// Each indexed file is keyed by the BLAKE3 hash of its content, so the same
// masterfile is stored once no matter where it lives on disk.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for the annotation index.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file, empty for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			hash VARCHAR PRIMARY KEY,
			path VARCHAR,
			size BIGINT,
			mod_time TIMESTAMP,
			contigs BIGINT,
			records BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS contigs (
			hash VARCHAR,
			contig_index BIGINT,
			contig VARCHAR,
			name_comments VARCHAR,
			genetic_code BIGINT,
			length BIGINT,
			PRIMARY KEY (hash, contig_index)
		)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			hash VARCHAR,
			contig_index BIGINT,
			contig VARCHAR,
			record_id BIGINT,
			kind VARCHAR,
			gene_name VARCHAR,
			direction VARCHAR,
			point BOOLEAN,
			has_start BOOLEAN,
			start_pos BIGINT,
			has_end BOOLEAN,
			end_pos BIGINT,
			start_line VARCHAR,
			end_line VARCHAR,
			PRIMARY KEY (hash, contig_index, record_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
