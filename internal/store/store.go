// Package store persists table streams into a SQL backend and runs ad-hoc
// SQL over them, streaming results back out as table streams.
//
// All columns are stored as TEXT: the engine's data model is strings, and
// keeping the store schema-free avoids type inference surprises. The embedded
// SQLite backend is the default; Postgres is available for shared stores.
package store

import (
	"context"
	"fmt"

	"kgtab/internal/table"
)

// Config selects and configures a storage backend.
type Config struct {
	// Kind is "sqlite" (default) or "postgres".
	Kind string

	// DSN is the backend connection string: a file path (or :memory:) for
	// SQLite, a postgresql:// URL for Postgres.
	DSN string
}

// Store is the minimal contract the CLI needs: create a TEXT table, bulk
// insert rows, and stream query results.
type Store interface {
	// CreateTable creates (or replaces) a table with TEXT columns.
	CreateTable(ctx context.Context, name string, columns []string) error

	// InsertRows bulk inserts rows aligned to columns, returning the number
	// of rows inserted.
	InsertRows(ctx context.Context, name string, columns []string, rows [][]string) (int64, error)

	// Query runs a SQL statement and streams the result set. NULLs come back
	// as empty strings.
	Query(ctx context.Context, sql string) (table.Stream, error)

	Close() error
}

// New constructs the backend named by cfg.Kind.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Kind {
	case "", "sqlite":
		return newSQLite(ctx, cfg)
	case "postgres":
		return newPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("store: unsupported kind %q (want sqlite or postgres)", cfg.Kind)
	}
}
