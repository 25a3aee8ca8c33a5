package op

import (
	"math/rand"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"testing"

	"kgtab/internal/table"
)

// TestUnique_CountsAndOrder checks hash-mode counting: one row per distinct
// key, first-seen emission order, counts summing to the input size.
func TestUnique_CountsAndOrder(t *testing.T) {
	t.Parallel()

	src := mkStream(t, []string{"node1", "node2"},
		table.Row{"Q2", "b"},
		table.Row{"Q1", "a"},
		table.Row{"Q2", "c"},
		table.Row{"Q3", "d"},
		table.Row{"Q1", "e"},
		table.Row{"Q2", "f"},
	)
	u, err := NewUnique(src, []string{"node1"}, UniqueOptions{})
	if err != nil {
		t.Fatalf("NewUnique: %v", err)
	}
	if got := u.Schema().Columns(); !reflect.DeepEqual(got, []string{"node1", "count"}) {
		t.Fatalf("schema = %v", got)
	}

	got := drain(t, u)
	want := []table.Row{{"Q2", "3"}, {"Q1", "2"}, {"Q3", "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unique rows = %v, want %v", got, want)
	}
}

// TestUnique_PresortedStreaming checks the O(1)-memory mode on a sorted input,
// including the final group flush at EOF.
func TestUnique_PresortedStreaming(t *testing.T) {
	t.Parallel()

	src := mkStream(t, []string{"node1"},
		table.Row{"Q1"}, table.Row{"Q1"}, table.Row{"Q2"}, table.Row{"Q3"}, table.Row{"Q3"},
	)
	u, err := NewUnique(src, []string{"node1"}, UniqueOptions{Presorted: true, CountLabel: "node1-entity-count"})
	if err != nil {
		t.Fatalf("NewUnique: %v", err)
	}
	got := drain(t, u)
	want := []table.Row{{"Q1", "2"}, {"Q2", "1"}, {"Q3", "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("presorted unique rows = %v, want %v", got, want)
	}
	if got := u.Schema().Columns()[1]; got != "node1-entity-count" {
		t.Fatalf("count column = %q", got)
	}
}

// TestUnique_ModesAgreeOnSortedInput cross-checks the two modes: on an
// actually-sorted random input they must produce identical results, and the
// counts must sum to the input row count.
func TestUnique_ModesAgreeOnSortedInput(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	var rows []table.Row
	for i := 0; i < 500; i++ {
		rows = append(rows, table.Row{"Q" + strconv.Itoa(rng.Intn(40))})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	run := func(presorted bool) []table.Row {
		src := mkStream(t, []string{"node1"}, rows...)
		u, err := NewUnique(src, []string{"node1"}, UniqueOptions{Presorted: presorted})
		if err != nil {
			t.Fatalf("NewUnique(presorted=%t): %v", presorted, err)
		}
		return drain(t, u)
	}

	sorted, hashed := run(true), run(false)
	if !reflect.DeepEqual(sorted, hashed) {
		t.Fatalf("modes disagree:\n presorted: %v\n hashed:    %v", sorted, hashed)
	}

	var sum int64
	for _, r := range hashed {
		n, err := strconv.ParseInt(r[1], 10, 64)
		if err != nil {
			t.Fatalf("bad count %q: %v", r[1], err)
		}
		sum += n
	}
	if sum != int64(len(rows)) {
		t.Fatalf("counts sum to %d, want %d", sum, len(rows))
	}
}

// TestUnique_CompoundKey groups on two columns at once.
func TestUnique_CompoundKey(t *testing.T) {
	t.Parallel()

	src := mkStream(t, []string{"node1", "label", "node2"},
		table.Row{"Q1", "P31", "x"},
		table.Row{"Q1", "P31", "y"},
		table.Row{"Q1", "P279", "z"},
	)
	u, err := NewUnique(src, []string{"node1", "label"}, UniqueOptions{})
	if err != nil {
		t.Fatalf("NewUnique: %v", err)
	}
	got := drain(t, u)
	want := []table.Row{{"Q1", "P31", "2"}, {"Q1", "P279", "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("compound unique rows = %v, want %v", got, want)
	}
}

// TestUnique_EmptyInput checks both modes emit nothing for an empty stream.
func TestUnique_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, presorted := range []bool{true, false} {
		src := mkStream(t, []string{"node1"})
		u, err := NewUnique(src, []string{"node1"}, UniqueOptions{Presorted: presorted})
		if err != nil {
			t.Fatalf("NewUnique: %v", err)
		}
		if got := drain(t, u); len(got) != 0 {
			t.Fatalf("presorted=%t: got %v rows from empty input", presorted, got)
		}
	}
}

// TestUnique_SortedMarkSelectsStreaming checks that a sortedness mark whose
// key prefix covers the grouping columns selects the O(1)-memory streaming
// mode without the Presorted flag, and that a mark on other columns does not.
func TestUnique_SortedMarkSelectsStreaming(t *testing.T) {
	t.Parallel()

	marked := table.AssertSorted(mkStream(t, []string{"node1", "node2"}), []string{"node1", "node2"})
	u, err := NewUnique(marked, []string{"node1"}, UniqueOptions{})
	if err != nil {
		t.Fatalf("NewUnique: %v", err)
	}
	if _, ok := u.(*sortedUnique); !ok {
		t.Fatalf("sorted-marked input built %T, want streaming mode", u)
	}

	other := table.AssertSorted(mkStream(t, []string{"node1", "node2"}), []string{"node2"})
	u, err = NewUnique(other, []string{"node1"}, UniqueOptions{})
	if err != nil {
		t.Fatalf("NewUnique: %v", err)
	}
	if _, ok := u.(*hashedUnique); !ok {
		t.Fatalf("mismatched mark built %T, want hash mode", u)
	}
}

// TestUnique_CheckedInputFailsFast counts through a verifying sortedness
// wrapper: an out-of-order row surfaces as an error from the aggregator
// instead of a silently duplicated key.
func TestUnique_CheckedInputFailsFast(t *testing.T) {
	t.Parallel()

	src, err := table.CheckSorted(mkStream(t, []string{"node1"},
		table.Row{"Q2"}, table.Row{"Q1"},
	), []string{"node1"})
	if err != nil {
		t.Fatalf("CheckSorted: %v", err)
	}
	u, err := NewUnique(src, []string{"node1"}, UniqueOptions{})
	if err != nil {
		t.Fatalf("NewUnique: %v", err)
	}
	if _, ok := u.(*sortedUnique); !ok {
		t.Fatalf("checked input built %T, want streaming mode", u)
	}
	if _, err := u.Next(); err == nil || !strings.Contains(err.Error(), "not sorted") {
		t.Fatalf("Next err = %v, want sortedness violation", err)
	}
}

// TestUnique_UnknownColumn checks construction fails before streaming.
func TestUnique_UnknownColumn(t *testing.T) {
	t.Parallel()

	src := mkStream(t, []string{"node1"})
	if _, err := NewUnique(src, []string{"nope"}, UniqueOptions{}); err == nil {
		t.Fatal("NewUnique with unknown column succeeded")
	}
}
