package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// SQLStore keeps cache records in a single key/value table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLStore opens the database and creates the table if needed.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s cache requires a dsn", dialect)
	}

	if dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dialect: dialect}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	blob := "BLOB"
	if s.dialect == DialectPostgres {
		blob = "BYTEA"
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS result_cache (
	cache_key  TEXT PRIMARY KEY,
	value      %s NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`, blob)

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create result_cache table: %w", err)
	}
	return nil
}

// bind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) bind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// Get retrieves a value.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT value FROM result_cache WHERE cache_key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	return value, nil
}

// Set inserts or replaces a value.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := s.bind(`INSERT INTO result_cache (cache_key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (cache_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)

	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert cache: %w", err)
	}
	return nil
}

// Delete removes a value.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM result_cache WHERE cache_key = ?`), key); err != nil {
		return fmt.Errorf("delete cache: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
