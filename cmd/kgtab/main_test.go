package main

import (
	"io"
	"reflect"
	"testing"

	"kgtab/internal/table"
)

// TestSplitColumns checks comma splitting, trimming, and empty inputs.
func TestSplitColumns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{"node1", []string{"node1"}},
		{"node1,node2", []string{"node1", "node2"}},
		{" node1 , node2 ", []string{"node1", "node2"}},
		{"node1,,node2", []string{"node1", "node2"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitColumns(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitColumns(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

// TestHeadStream verifies truncation after N rows without draining upstream.
func TestHeadStream(t *testing.T) {
	t.Parallel()

	schema, err := table.NewSchema([]string{"node1"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	src := table.NewSliceStream(schema, []table.Row{{"Q1"}, {"Q2"}, {"Q3"}})

	h := &headStream{up: src, left: 2}
	rows, err := table.ReadAll(h)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !reflect.DeepEqual(rows, []table.Row{{"Q1"}, {"Q2"}}) {
		t.Fatalf("rows = %v", rows)
	}

	h = &headStream{up: table.NewSliceStream(schema, nil), left: 0}
	if _, err := h.Next(); err != io.EOF {
		t.Fatalf("zero head Next err = %v, want EOF", err)
	}
}
