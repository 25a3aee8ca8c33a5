package store

import (
	"database/sql"
	"io"

	"kgtab/internal/table"
)

// sqlRowsStream adapts a database/sql result set to table.Stream. All values
// scan through sql.NullString; NULL becomes the empty string, matching the
// engine's empty-cell convention.
type sqlRowsStream struct {
	schema *table.Schema
	rows   *sql.Rows
	buf    []sql.NullString
	ptrs   []any
	out    []string
}

func (s *sqlRowsStream) Schema() *table.Schema { return s.schema }

func (s *sqlRowsStream) Next() (table.Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	n := s.schema.Len()
	if s.buf == nil {
		s.buf = make([]sql.NullString, n)
		s.ptrs = make([]any, n)
		s.out = make([]string, n)
		for i := range s.buf {
			s.ptrs[i] = &s.buf[i]
		}
	}
	if err := s.rows.Scan(s.ptrs...); err != nil {
		return nil, err
	}
	for i, v := range s.buf {
		if v.Valid {
			s.out[i] = v.String
		} else {
			s.out[i] = ""
		}
	}
	return s.out, nil
}

func (s *sqlRowsStream) Close() error { return s.rows.Close() }
