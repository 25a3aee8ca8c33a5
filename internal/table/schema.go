package table

import "strings"

// Conventional KGTK edge-file column names. An edge file relates a subject
// entity (node1), a property (label), and an object value or entity (node2).
const (
	Node1Column = "node1"
	LabelColumn = "label"
	Node2Column = "node2"
)

// Row is one record: field values aligned to the owning stream's schema.
// Field order is significant for output.
type Row = []string

// Schema is the fixed column layout of one stream. It is computed once when a
// stream is opened or a stage is built; rows never carry names themselves.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a Schema from an ordered column list. Empty or duplicate
// column names are a SchemaError.
func NewSchema(columns []string) (*Schema, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, &SchemaError{Msg: "empty column name in header"}
		}
		if _, dup := idx[c]; dup {
			return nil, &SchemaError{Column: c, Msg: "duplicate column name"}
		}
		idx[c] = i
	}
	return &Schema{columns: columns, index: idx}, nil
}

// Columns returns the ordered column names. Callers must not modify the
// returned slice.
func (s *Schema) Columns() []string { return s.columns }

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Resolve maps a column name to its index. Unknown names are a SchemaError.
func (s *Schema) Resolve(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, &SchemaError{Column: name, Msg: "not present in input"}
	}
	return i, nil
}

// ResolveAll maps several column names at once, failing on the first unknown
// name.
func (s *Schema) ResolveAll(names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		ix, err := s.Resolve(n)
		if err != nil {
			return nil, err
		}
		out[i] = ix
	}
	return out, nil
}

// Has reports whether the schema contains the named column.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// keySep separates fields inside a compound key. \x1f (unit separator) is
// vanishingly unlikely inside tabular cell data.
const keySep = "\x1f"

// Key builds the compound grouping/join key for row over the given column
// indexes. Equality is exact string match per field.
func Key(row Row, idx []int) string {
	if len(idx) == 1 {
		return row[idx[0]]
	}
	var b strings.Builder
	for n, i := range idx {
		if n > 0 {
			b.WriteString(keySep)
		}
		b.WriteString(row[i])
	}
	return b.String()
}
