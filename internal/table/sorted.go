package table

import "fmt"

// Sorted marks a stream as ordered ascending by the given key columns.
//
// The mark licenses O(1)-memory merge algorithms downstream (streaming
// grouping, merge-join). It is an assertion, not a guarantee: feeding an
// unsorted stream through a merge stage silently produces wrong results
// (duplicate keys, missed joins). Use CheckSorted when the cost of an
// in-band verification pass is acceptable.
type Sorted struct {
	Stream
	By []string
}

// AssertSorted wraps s with an unchecked sortedness claim. The caller owns
// the risk; this mirrors the --presorted style flags on the CLI.
func AssertSorted(s Stream, by []string) *Sorted {
	return &Sorted{Stream: s, By: by}
}

// CheckSorted wraps s so that every Next verifies the ascending order of the
// key columns against the previous row, failing fast on the first violation.
// The check adds one key comparison and one key copy per row.
func CheckSorted(s Stream, by []string) (*Sorted, error) {
	idx, err := s.Schema().ResolveAll(by)
	if err != nil {
		return nil, err
	}
	return &Sorted{
		Stream: &sortChecker{up: s, idx: idx, by: by},
		By:     by,
	}, nil
}

type sortChecker struct {
	up   Stream
	idx  []int
	by   []string
	prev string
	line int64
	seen bool
}

func (c *sortChecker) Schema() *Schema { return c.up.Schema() }

func (c *sortChecker) Next() (Row, error) {
	r, err := c.up.Next()
	if err != nil {
		return nil, err
	}
	c.line++
	k := Key(r, c.idx)
	if c.seen && k < c.prev {
		return nil, fmt.Errorf("row %d: input not sorted by %v: %q < %q",
			c.line, c.by, k, c.prev)
	}
	c.prev = k
	c.seen = true
	return r, nil
}

func (c *sortChecker) Close() error { return c.up.Close() }
