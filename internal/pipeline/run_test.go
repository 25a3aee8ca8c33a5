package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kgtab/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const claimsTSV = "node1\tlabel\tnode2\n" +
	"Q1\tP31\tQ5\n" +
	"Q1\tP279\tx42\n" +
	"Q2\tP31\tQ5\n"

// TestRun_FilterUnique executes a filter+unique pipeline over temp files and
// checks both the output file and the summary accounting.
func TestRun_FilterUnique(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "claims.tsv", claimsTSV)
	out := filepath.Join(dir, "counts.tsv")

	cfg := config.Pipeline{
		Job:    "count-entities",
		Source: config.Source{Path: in},
		Stages: []config.Stage{
			{Kind: "filter", Options: config.Options{"column": "node2", "pattern": "^[PQ].*$"}},
			{Kind: "unique", Options: config.Options{"columns": []string{"node1"}}},
		},
		Sink: config.Sink{Path: out, Atomic: true},
	}

	sum, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.RowsRead != 3 {
		t.Fatalf("RowsRead = %d, want 3", sum.RowsRead)
	}
	if sum.RowsWritten != 2 {
		t.Fatalf("RowsWritten = %d, want 2", sum.RowsWritten)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "node1\tcount\nQ1\t1\nQ2\t1\n"
	if string(b) != want {
		t.Fatalf("output = %q, want %q", b, want)
	}
}

// TestRun_LiftStage runs a lift pipeline with a label file opened per stage
// config.
func TestRun_LiftStage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "claims.tsv", claimsTSV)
	labels := writeFile(t, dir, "labels.tsv",
		"node1\tlabel\tnode2\nQ1\tlabel\tapple\nQ2\tlabel\tbanana\n")
	out := filepath.Join(dir, "lifted.tsv")

	cfg := config.Pipeline{
		Job:    "lift-labels",
		Source: config.Source{Path: in},
		Stages: []config.Stage{
			{Kind: "lift", Options: config.Options{
				"label_file": labels,
				"columns":    []string{"node1"},
			}},
		},
		Sink:    config.Sink{Path: out},
		Runtime: config.Runtime{Prefetch: 16},
	}

	sum, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.RowsRead != 3 || sum.RowsWritten != 3 {
		t.Fatalf("summary = %+v, want 3 read and 3 written", sum)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "node1\tlabel\tnode2\tnode1;label\n" +
		"Q1\tP31\tQ5\tapple\n" +
		"Q1\tP279\tx42\tapple\n" +
		"Q2\tP31\tQ5\tbanana\n"
	if string(b) != want {
		t.Fatalf("output = %q, want %q", b, want)
	}
}

// TestRun_FailFast checks a missing source aborts before creating the atomic
// sink, leaving no output file behind.
func TestRun_FailFast(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.tsv")
	cfg := config.Pipeline{
		Source: config.Source{Path: filepath.Join(dir, "nope.tsv")},
		Sink:   config.Sink{Path: out, Atomic: true},
	}
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run with missing source succeeded")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output file exists after failed run: %v", err)
	}
}

// TestRun_UnknownStage checks stage translation errors surface.
func TestRun_UnknownStage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "claims.tsv", claimsTSV)
	cfg := config.Pipeline{
		Source: config.Source{Path: in},
		Stages: []config.Stage{{Kind: "explode"}},
		Sink:   config.Sink{Path: filepath.Join(dir, "out.tsv")},
	}
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run with unknown stage kind succeeded")
	}
}
