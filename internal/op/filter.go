// Package op implements the composable streaming operations of the toolkit:
// column filters, the unique/count aggregator, the label lifter, and the
// fluent pipeline that chains them.
//
// Every operation consumes and produces table.Stream, so stages nest without
// intermediate files. Stages resolve column names to indexes once, at
// construction; anything that can fail per-configuration (unknown column, bad
// regex) fails there, before the first row is pulled.
package op

import (
	"regexp"

	"kgtab/internal/table"
)

// filterStream passes through rows for which keep returns true. Rows that do
// not match are dropped silently.
type filterStream struct {
	up   table.Stream
	keep func(table.Row) bool
}

func (f *filterStream) Schema() *table.Schema { return f.up.Schema() }

func (f *filterStream) Next() (table.Row, error) {
	for {
		row, err := f.up.Next()
		if err != nil {
			return nil, err
		}
		if f.keep(row) {
			return row, nil
		}
	}
}

func (f *filterStream) Close() error { return f.up.Close() }

// NewRegexFilter keeps rows whose column value matches pattern. The match is
// unanchored: callers wanting a full-value match supply ^...$ themselves.
// An invalid pattern is a PatternError at construction time.
func NewRegexFilter(up table.Stream, column, pattern string) (table.Stream, error) {
	idx, err := up.Schema().Resolve(column)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &table.PatternError{Pattern: pattern, Err: err}
	}
	return &filterStream{
		up:   up,
		keep: func(r table.Row) bool { return re.MatchString(r[idx]) },
	}, nil
}

// NewValueFilter keeps rows whose column value equals value exactly.
func NewValueFilter(up table.Stream, column, value string) (table.Stream, error) {
	idx, err := up.Schema().Resolve(column)
	if err != nil {
		return nil, err
	}
	return &filterStream{
		up:   up,
		keep: func(r table.Row) bool { return r[idx] == value },
	}, nil
}

// EmptyMode selects how a multi-column emptiness test combines per-column
// results.
type EmptyMode string

const (
	// EmptyAny passes when any of the columns satisfies the test.
	EmptyAny EmptyMode = "any"
	// EmptyAll passes when all of the columns satisfy the test.
	EmptyAll EmptyMode = "all"
)

// NewEmptyFilter keeps rows where any/all of the named columns are empty, or
// non-empty when notEmpty is set.
func NewEmptyFilter(up table.Stream, columns []string, mode EmptyMode, notEmpty bool) (table.Stream, error) {
	idx, err := up.Schema().ResolveAll(columns)
	if err != nil {
		return nil, err
	}
	all := mode == EmptyAll
	return &filterStream{
		up: up,
		keep: func(r table.Row) bool {
			for _, i := range idx {
				hit := (r[i] == "") != notEmpty
				if all && !hit {
					return false
				}
				if !all && hit {
					return true
				}
			}
			return all
		},
	}, nil
}
