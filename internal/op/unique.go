package op

import (
	"io"
	"strconv"

	"github.com/zeebo/xxh3"

	"kgtab/internal/table"
)

// DefaultCountLabel names the count column when the caller does not supply
// one.
const DefaultCountLabel = "count"

// UniqueOptions configures the unique/count aggregator.
type UniqueOptions struct {
	// CountLabel names the output count column. Empty means DefaultCountLabel.
	CountLabel string

	// Presorted asserts the input is already ordered by the key columns,
	// enabling the O(1)-memory single-pass mode. If the assertion is wrong
	// the output may contain duplicate key records; the aggregator does not
	// verify it. Wrapping the input in a table.Sorted whose key prefix covers
	// the key columns selects the same mode without the flag, and carries the
	// verification when built with table.CheckSorted.
	Presorted bool
}

// sortedPrefix reports whether up carries a sortedness mark whose leading key
// columns match cols. A stream sorted by (a, b) is grouped by (a), so a
// longer mark still licenses streaming aggregation on its prefix.
func sortedPrefix(up table.Stream, cols []string) bool {
	s, ok := up.(*table.Sorted)
	if !ok || len(s.By) < len(cols) {
		return false
	}
	for i, c := range cols {
		if s.By[i] != c {
			return false
		}
	}
	return true
}

// NewUnique groups rows by the key columns and emits one row per distinct
// key: the key column values followed by an occurrence count.
//
// Presorted inputs stream with O(1) memory. Unsorted inputs are hash
// aggregated (O(distinct keys) memory) and emitted in first-seen order, which
// keeps the output deterministic without a sort step.
//
// Invariants: the output has exactly one row per distinct key, and the counts
// sum to the input row count. An empty input yields an empty output.
func NewUnique(up table.Stream, keyColumns []string, opts UniqueOptions) (table.Stream, error) {
	idx, err := up.Schema().ResolveAll(keyColumns)
	if err != nil {
		return nil, err
	}
	label := opts.CountLabel
	if label == "" {
		label = DefaultCountLabel
	}
	cols := make([]string, 0, len(keyColumns)+1)
	cols = append(cols, keyColumns...)
	cols = append(cols, label)
	schema, err := table.NewSchema(cols)
	if err != nil {
		return nil, err
	}

	if opts.Presorted || sortedPrefix(up, keyColumns) {
		return &sortedUnique{up: up, idx: idx, schema: schema}, nil
	}
	return &hashedUnique{up: up, idx: idx, schema: schema}, nil
}

// countRow assembles a count record from key fields and a tally.
func countRow(fields []string, n int64) table.Row {
	out := make(table.Row, 0, len(fields)+1)
	out = append(out, fields...)
	out = append(out, strconv.FormatInt(n, 10))
	return out
}

func keyFields(row table.Row, idx []int) []string {
	out := make([]string, len(idx))
	for i, ix := range idx {
		out[i] = row[ix]
	}
	return out
}

// sortedUnique is the single-pass streaming mode: it tracks the current key
// and a running count, emitting a record whenever the key changes.
type sortedUnique struct {
	up     table.Stream
	idx    []int
	schema *table.Schema

	cur     []string
	curKey  string
	count   int64
	started bool
	done    bool
}

func (u *sortedUnique) Schema() *table.Schema { return u.schema }

func (u *sortedUnique) Next() (table.Row, error) {
	if u.done {
		return nil, io.EOF
	}
	for {
		row, err := u.up.Next()
		if err == io.EOF {
			u.done = true
			if !u.started {
				return nil, io.EOF
			}
			return countRow(u.cur, u.count), nil
		}
		if err != nil {
			return nil, err
		}

		k := table.Key(row, u.idx)
		if !u.started {
			u.cur = keyFields(row, u.idx)
			u.curKey = k
			u.count = 1
			u.started = true
			continue
		}
		if k == u.curKey {
			u.count++
			continue
		}

		out := countRow(u.cur, u.count)
		u.cur = keyFields(row, u.idx)
		u.curKey = k
		u.count = 1
		return out, nil
	}
}

func (u *sortedUnique) Close() error { return u.up.Close() }

// hashedUnique consumes the whole upstream into a hash table keyed by the
// 64-bit xxh3 of the compound key. Buckets chain group indexes; a full key
// comparison resolves hash collisions, so counts are exact. Emission order is
// first-seen.
type hashedUnique struct {
	up     table.Stream
	idx    []int
	schema *table.Schema

	built   bool
	groups  []uniqueGroup
	buckets map[uint64][]int32
	pos     int
}

type uniqueGroup struct {
	key    string
	fields []string
	count  int64
}

func (u *hashedUnique) Schema() *table.Schema { return u.schema }

func (u *hashedUnique) build() error {
	u.buckets = make(map[uint64][]int32)
	for {
		row, err := u.up.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		k := table.Key(row, u.idx)
		h := xxh3.HashString(k)

		found := false
		for _, gi := range u.buckets[h] {
			if u.groups[gi].key == k {
				u.groups[gi].count++
				found = true
				break
			}
		}
		if !found {
			u.groups = append(u.groups, uniqueGroup{
				key:    k,
				fields: keyFields(row, u.idx),
				count:  1,
			})
			u.buckets[h] = append(u.buckets[h], int32(len(u.groups)-1))
		}
	}
}

func (u *hashedUnique) Next() (table.Row, error) {
	if !u.built {
		if err := u.build(); err != nil {
			return nil, err
		}
		u.built = true
		u.buckets = nil // only the insertion-ordered groups are needed now
	}
	if u.pos >= len(u.groups) {
		return nil, io.EOF
	}
	g := u.groups[u.pos]
	u.pos++
	return countRow(g.fields, g.count), nil
}

func (u *hashedUnique) Close() error { return u.up.Close() }
