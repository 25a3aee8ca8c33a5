package inspect

import (
	"testing"

	"kgtab/internal/table"
)

// TestStream_Profile checks row counts, fill rates, distinct counts, and the
// first-seen example value.
func TestStream_Profile(t *testing.T) {
	t.Parallel()

	schema, err := table.NewSchema([]string{"node1", "node2"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	src := table.NewSliceStream(schema, []table.Row{
		{"Q1", "x"},
		{"Q1", ""},
		{"Q2", "y"},
		{"", "x"},
	})

	p, err := Stream(src)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if p.Rows != 4 {
		t.Fatalf("Rows = %d, want 4", p.Rows)
	}

	n1 := p.Columns[0]
	if n1.Name != "node1" || n1.NonEmpty != 3 || n1.Distinct != 2 || n1.Example != "Q1" {
		t.Fatalf("node1 profile = %+v", n1)
	}
	n2 := p.Columns[1]
	if n2.NonEmpty != 3 || n2.Distinct != 2 || n2.Example != "x" {
		t.Fatalf("node2 profile = %+v", n2)
	}
	if n1.DistinctCapped || n2.DistinctCapped {
		t.Fatal("small profile should not hit the distinct cap")
	}
}

// TestStream_EmptyInput profiles a stream with a header but no rows.
func TestStream_EmptyInput(t *testing.T) {
	t.Parallel()

	schema, err := table.NewSchema([]string{"node1"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	p, err := Stream(table.NewSliceStream(schema, nil))
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if p.Rows != 0 || len(p.Columns) != 1 || p.Columns[0].NonEmpty != 0 {
		t.Fatalf("profile = %+v", p)
	}
}
