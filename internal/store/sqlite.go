package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver (pure Go).
	_ "modernc.org/sqlite"

	"kgtab/internal/table"
)

// sqliteStore is the embedded default backend. SQLite has no dedicated
// bulk-load API, so InsertRows executes a prepared single-row INSERT once per
// row inside one transaction, which keeps performance acceptable for moderate
// volumes.
type sqliteStore struct {
	db *sql.DB
}

func newSQLite(ctx context.Context, cfg Config) (*sqliteStore, error) {
	dsn := cfg.DSN
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection only: a pooled second connection to :memory: would see
	// its own empty database, and file DBs gain nothing from write pooling.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) CreateTable(ctx context.Context, name string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("sqlite: create table %s: no columns", name)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	stmts := []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name)),
		fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", ")),
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("sqlite: %s: %w", q, err)
		}
	}
	return nil
}

func (s *sqliteStore) InsertRows(ctx context.Context, name string, columns []string, rows [][]string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = "?"
		quoted[i] = quoteIdent(c)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			tx.Rollback()
			return inserted, fmt.Errorf("sqlite: row has %d values, want %d", len(row), len(columns))
		}
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return inserted, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

func (s *sqliteStore) Query(ctx context.Context, query string) (table.Stream, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}
	schema, err := table.NewSchema(cols)
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &sqlRowsStream{schema: schema, rows: rows}, nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// quoteIdent double-quotes a SQL identifier, escaping embedded quotes. Used
// for table and column names that come from user headers.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
