// Package table defines the core data model shared by every pipeline stage:
// a Row of string fields, a Schema mapping column names to indexes, and the
// pull-based Stream interface that stages chain together.
//
// Design notes:
//
//   - Column lookups by name happen once, at stage construction time, via
//     Schema.Resolve; per-row access is always by index.
//   - Streams are lazy and forward-only. A stage wraps its upstream and pulls
//     one row at a time, so memory stays bounded unless a stage explicitly
//     materializes (hash aggregation, hash join).
//   - Sortedness travels as a Sorted mark on the stream; AssertSorted claims
//     it unchecked, CheckSorted verifies it in-band. Merge stages honor the
//     mark.
package table

import "fmt"

// IOError reports a source or sink that could not be opened, read, or written.
type IOError struct {
	Op   string // "open", "read", "write", "close", "rename"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// SchemaError reports a column that a stage requires but the stream's header
// does not provide, or a malformed header.
type SchemaError struct {
	Column string
	Msg    string
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema: column %q: %s", e.Column, e.Msg)
	}
	return "schema: " + e.Msg
}

// PatternError reports an invalid filter pattern. It is raised when the stage
// is constructed, never per-row.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }
