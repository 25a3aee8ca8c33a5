package table

import "io"

// Stream is a lazy, finite, forward-only sequence of rows sharing one schema.
//
// Next returns io.EOF after the last row. Implementations return rows that the
// caller may retain until the following Next call; callers needing longer
// lifetimes must copy.
//
// Close releases underlying resources. It is safe to call after Next returned
// io.EOF, and stages propagate Close to their upstream.
type Stream interface {
	Schema() *Schema
	Next() (Row, error)
	Close() error
}

// SliceStream is an in-memory Stream, used by tests and by stages that must
// materialize (hash aggregation).
type SliceStream struct {
	schema *Schema
	rows   []Row
	pos    int
}

// NewSliceStream wraps already-materialized rows in a Stream.
func NewSliceStream(schema *Schema, rows []Row) *SliceStream {
	return &SliceStream{schema: schema, rows: rows}
}

func (s *SliceStream) Schema() *Schema { return s.schema }

func (s *SliceStream) Next() (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	r := s.rows[s.pos]
	s.pos++
	return r, nil
}

func (s *SliceStream) Close() error { return nil }

// ReadAll drains s into memory and closes it. Intended for tests and small
// results only; pipeline stages stay streaming.
func ReadAll(s Stream) ([]Row, error) {
	defer s.Close()
	var out []Row
	for {
		r, err := s.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		cp := make(Row, len(r))
		copy(cp, r)
		out = append(out, cp)
	}
}
