package op

import (
	"io"

	"kgtab/internal/table"
)

// DefaultLiftSuffix is appended to the source column name to form the lifted
// label column, e.g. "node1" → "node1;label".
const DefaultLiftSuffix = ";label"

// LabelSource opens a fresh cursor over the label table. Lifting several
// columns scans the label table once per column, so the source must be
// re-openable; correctness never depends on sharing one cursor across lift
// targets.
type LabelSource func() (table.Stream, error)

// LiftOptions configures the label lifter.
type LiftOptions struct {
	// MatchColumn is the label-table column holding the identifier to join
	// on. Empty means node1.
	MatchColumn string

	// ValueColumn is the label-table column holding the label string.
	// Empty means node2.
	ValueColumn string

	// OutputColumns optionally names the lifted columns, aligned with the
	// columns being lifted. Empty entries (or a nil slice) fall back to
	// "<column>;label".
	OutputColumns []string

	// PrimaryPresorted and LabelPresorted assert ascending order by the join
	// key on their respective sides. When both hold, each lift runs as an
	// O(1)-memory streaming merge-join. Otherwise the label table is loaded
	// into a hash map. Wrong assertions silently degrade the join (missing
	// matches); wrap a side in table.CheckSorted to have the order verified
	// while streaming. A primary stream marked with table.Sorted on the lifted
	// column counts as presorted without the flag.
	PrimaryPresorted bool
	LabelPresorted   bool
}

func (o LiftOptions) matchColumn() string {
	if o.MatchColumn == "" {
		return table.Node1Column
	}
	return o.MatchColumn
}

func (o LiftOptions) valueColumn() string {
	if o.ValueColumn == "" {
		return table.Node2Column
	}
	return o.ValueColumn
}

func (o LiftOptions) outputColumn(i int, column string) string {
	if i < len(o.OutputColumns) && o.OutputColumns[i] != "" {
		return o.OutputColumns[i]
	}
	return column + DefaultLiftSuffix
}

// NewLift enriches the primary stream with label columns looked up from the
// label table: a left outer join per lifted column. Every primary row appears
// exactly once in the output; rows whose identifier has no label get an empty
// label cell. When a label key occurs more than once in the label table, the
// first row wins.
//
// Each lifted column is an independent join stage composed in sequence, each
// with its own label-table cursor.
func NewLift(primary table.Stream, labels LabelSource, columnsToLift []string, opts LiftOptions) (table.Stream, error) {
	if len(columnsToLift) == 0 {
		return primary, nil
	}
	stream := primary
	for i, col := range columnsToLift {
		var err error
		stream, err = newSingleLift(stream, labels, col, opts.outputColumn(i, col), opts)
		if err != nil {
			return nil, err
		}
	}
	return stream, nil
}

func newSingleLift(up table.Stream, labels LabelSource, column, outColumn string, opts LiftOptions) (table.Stream, error) {
	upIdx, err := up.Schema().Resolve(column)
	if err != nil {
		return nil, err
	}
	cols := append(append([]string{}, up.Schema().Columns()...), outColumn)
	schema, err := table.NewSchema(cols)
	if err != nil {
		return nil, err
	}

	if (opts.PrimaryPresorted || sortedPrefix(up, []string{column})) && opts.LabelPresorted {
		return &mergeLift{up: up, open: labels, opts: opts, upIdx: upIdx, schema: schema}, nil
	}
	return &hashLift{up: up, open: labels, opts: opts, upIdx: upIdx, schema: schema}, nil
}

// appendLabel copies the upstream row and appends the lifted cell; upstream
// readers reuse their row slices, so aliasing is not an option here.
func appendLabel(row table.Row, label string, width int) table.Row {
	out := make(table.Row, 0, width)
	out = append(out, row...)
	return append(out, label)
}

// mergeLift advances the primary and label cursors in lockstep. The label
// cursor only moves forward when the primary key strictly passes it, so
// several primary rows sharing one key reuse the same label row.
type mergeLift struct {
	up     table.Stream
	open   LabelSource
	opts   LiftOptions
	upIdx  int
	schema *table.Schema

	labels   table.Stream
	matchIdx int
	valIdx   int

	labelKey  string
	labelVal  string
	labelOK   bool // current label row is valid
	labelDone bool
}

func (l *mergeLift) Schema() *table.Schema { return l.schema }

func (l *mergeLift) initLabels() error {
	ls, err := l.open()
	if err != nil {
		return err
	}
	mi, err := ls.Schema().Resolve(l.opts.matchColumn())
	if err != nil {
		ls.Close()
		return err
	}
	vi, err := ls.Schema().Resolve(l.opts.valueColumn())
	if err != nil {
		ls.Close()
		return err
	}
	l.labels, l.matchIdx, l.valIdx = ls, mi, vi
	return nil
}

func (l *mergeLift) advanceLabel() error {
	row, err := l.labels.Next()
	if err == io.EOF {
		l.labelDone = true
		l.labelOK = false
		return nil
	}
	if err != nil {
		return err
	}
	l.labelKey = row[l.matchIdx]
	l.labelVal = row[l.valIdx]
	l.labelOK = true
	return nil
}

func (l *mergeLift) Next() (table.Row, error) {
	if l.labels == nil {
		if err := l.initLabels(); err != nil {
			return nil, err
		}
	}

	row, err := l.up.Next()
	if err != nil {
		return nil, err
	}
	key := row[l.upIdx]

	// Skip label rows below the primary key. Duplicate label keys collapse
	// to their first row because the cursor stops on the first equal key.
	for !l.labelDone && (!l.labelOK || l.labelKey < key) {
		if err := l.advanceLabel(); err != nil {
			return nil, err
		}
		if l.labelOK && l.labelKey >= key {
			break
		}
	}

	if l.labelOK && l.labelKey == key && key != "" {
		return appendLabel(row, l.labelVal, l.schema.Len()), nil
	}
	return appendLabel(row, "", l.schema.Len()), nil
}

func (l *mergeLift) Close() error {
	var first error
	if l.labels != nil {
		first = l.labels.Close()
	}
	if err := l.up.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// hashLift materializes the label table into a first-wins map, then streams
// the primary side. Used whenever either side's sortedness is not asserted.
type hashLift struct {
	up     table.Stream
	open   LabelSource
	opts   LiftOptions
	upIdx  int
	schema *table.Schema

	byKey map[string]string
}

func (l *hashLift) Schema() *table.Schema { return l.schema }

func (l *hashLift) load() error {
	ls, err := l.open()
	if err != nil {
		return err
	}
	defer ls.Close()

	mi, err := ls.Schema().Resolve(l.opts.matchColumn())
	if err != nil {
		return err
	}
	vi, err := ls.Schema().Resolve(l.opts.valueColumn())
	if err != nil {
		return err
	}

	l.byKey = make(map[string]string)
	for {
		row, err := ls.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		k := row[mi]
		if k == "" {
			continue
		}
		if _, seen := l.byKey[k]; !seen {
			l.byKey[k] = row[vi]
		}
	}
}

func (l *hashLift) Next() (table.Row, error) {
	if l.byKey == nil {
		if err := l.load(); err != nil {
			return nil, err
		}
	}
	row, err := l.up.Next()
	if err != nil {
		return nil, err
	}
	return appendLabel(row, l.byKey[row[l.upIdx]], l.schema.Len()), nil
}

func (l *hashLift) Close() error { return l.up.Close() }
