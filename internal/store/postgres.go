package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kgtab/internal/table"
)

// postgresStore backs the store with a Postgres server via pgx. Bulk loading
// uses the COPY protocol, which is the fastest path pgx offers.
type postgresStore struct {
	pool *pgxpool.Pool
}

func newPostgres(ctx context.Context, cfg Config) (*postgresStore, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) CreateTable(ctx context.Context, name string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("postgres: create table %s: no columns", name)
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
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("postgres: %s: %w", q, err)
		}
	}
	return nil
}

func (s *postgresStore) InsertRows(ctx context.Context, name string, columns []string, rows [][]string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	src := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("postgres: row has %d values, want %d", len(row), len(columns))
		}
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		src[i] = vals
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{name}, columns, pgx.CopyFromRows(src))
	if err != nil {
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

func (s *postgresStore) Query(ctx context.Context, query string) (table.Stream, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	schema, err := table.NewSchema(cols)
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &pgxRowsStream{schema: schema, rows: rows}, nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}

// pgxRowsStream adapts a pgx result set to table.Stream.
type pgxRowsStream struct {
	schema *table.Schema
	rows   pgx.Rows
	out    []string
}

func (s *pgxRowsStream) Schema() *table.Schema { return s.schema }

func (s *pgxRowsStream) Next() (table.Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	vals, err := s.rows.Values()
	if err != nil {
		return nil, err
	}
	if s.out == nil {
		s.out = make([]string, s.schema.Len())
	}
	for i, v := range vals {
		switch t := v.(type) {
		case nil:
			s.out[i] = ""
		case string:
			s.out[i] = t
		case []byte:
			s.out[i] = string(t)
		default:
			s.out[i] = fmt.Sprint(t)
		}
	}
	return s.out, nil
}

func (s *pgxRowsStream) Close() error {
	s.rows.Close()
	return nil
}
