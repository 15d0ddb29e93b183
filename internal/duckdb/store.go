// Package duckdb archives classified OGC requests in an embedded DuckDB
// database so usage questions can be answered with SQL after the fact.
package duckdb

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

const schema = `CREATE TABLE IF NOT EXISTS requests (
	timestamp  TIMESTAMP NOT NULL,
	service    VARCHAR NOT NULL,
	operation  VARCHAR NOT NULL,
	client     VARCHAR NOT NULL,
	resources  VARCHAR NOT NULL
)`

// Store manages the DuckDB connection and provides query methods.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	dbPath       string
	QueryTimeout time.Duration
}

// NewStore opens or creates a DuckDB database. An empty dbPath uses an
// in-memory database. An optional queryTimeout defaults to 30s.
func NewStore(dbPath string, queryTimeout ...time.Duration) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	qt := 30 * time.Second
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		qt = queryTimeout[0]
	}

	return &Store{
		db:           db,
		dbPath:       dbPath,
		QueryTimeout: qt,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
