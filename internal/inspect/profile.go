// Package inspect profiles table streams: row counts, per-column fill rates,
// and distinct-value counts. It backs the CLI's inspect command, which is the
// usual first step before deciding how to filter or aggregate an unfamiliar
// file.
package inspect

import (
	"io"

	"github.com/zeebo/xxh3"

	"kgtab/internal/table"
)

// DistinctCap bounds the per-column distinct tracking. Columns with more
// distinct values than the cap report Distinct == DistinctCap and
// DistinctCapped == true; tracking stops there so memory stays bounded on
// high-cardinality columns.
const DistinctCap = 100000

// ColumnProfile describes one column of a profiled stream.
type ColumnProfile struct {
	Name     string
	NonEmpty int64

	Distinct       int64
	DistinctCapped bool

	// Example is the first non-empty value seen.
	Example string
}

// Profile describes a whole stream.
type Profile struct {
	Rows    int64
	Columns []ColumnProfile
}

// Stream drains s and computes its profile. Distinct counting hashes values
// with xxh3, so two distinct values may in rare cases collide and count as
// one; profiles are advisory, not exact accounting.
func Stream(s table.Stream) (Profile, error) {
	defer s.Close()

	columns := s.Schema().Columns()
	p := Profile{Columns: make([]ColumnProfile, len(columns))}
	seen := make([]map[uint64]struct{}, len(columns))
	for i, c := range columns {
		p.Columns[i].Name = c
		seen[i] = make(map[uint64]struct{})
	}

	for {
		row, err := s.Next()
		if err == io.EOF {
			return p, nil
		}
		if err != nil {
			return p, err
		}
		p.Rows++

		for i, v := range row {
			cp := &p.Columns[i]
			if v == "" {
				continue
			}
			cp.NonEmpty++
			if cp.Example == "" {
				cp.Example = v
			}
			if cp.DistinctCapped {
				continue
			}
			h := xxh3.HashString(v)
			if _, dup := seen[i][h]; !dup {
				seen[i][h] = struct{}{}
				cp.Distinct++
				if cp.Distinct >= DistinctCap {
					cp.DistinctCapped = true
					seen[i] = nil
				}
			}
		}
	}
}
