package kgio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"kgtab/internal/table"
)

var claimsRows = []table.Row{
	{"Q1", "P31", "Q5"},
	{"Q1", "P279", "Q2"},
	{"Q2", "P31", ""},
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.tsv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func claimsStream(t *testing.T) table.Stream {
	t.Helper()
	schema, err := table.NewSchema([]string{"node1", "label", "node2"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return table.NewSliceStream(schema, claimsRows)
}

// TestRoundTrip writes a stream and reads it back, expecting an identical row
// sequence under every codec.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, codec := range []Codec{CodecNone, CodecGzip, CodecXZ} {
		codec := codec
		name := string(codec)
		if name == "" {
			name = "plain"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.tsv")
			n, err := Write(path, claimsStream(t), WriteOptions{Codec: codec})
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if n != int64(len(claimsRows)) {
				t.Fatalf("Write reported %d rows, want %d", n, len(claimsRows))
			}

			r, err := Open(path, ReadOptions{Codec: codec})
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if got := r.Schema().Columns(); !reflect.DeepEqual(got, []string{"node1", "label", "node2"}) {
				t.Fatalf("schema = %v", got)
			}
			rows, err := table.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !reflect.DeepEqual(rows, claimsRows) {
				t.Fatalf("round trip rows = %v, want %v", rows, claimsRows)
			}
		})
	}
}

// TestAtomicWrite checks the temp-and-rename path produces the final file and
// leaves no temp debris behind.
func TestAtomicWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.tsv")
	if _, err := Write(path, claimsStream(t), WriteOptions{Atomic: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.tsv" {
		t.Fatalf("dir contents = %v, want only out.tsv", entries)
	}
}

// TestOpen_RequiredColumns verifies a missing required column surfaces as a
// SchemaError naming the column.
func TestOpen_RequiredColumns(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "node1\tnode2\nQ1\tQ5\n")
	_, err := Open(path, ReadOptions{EdgeFile: true})
	var se *table.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Open err = %v, want SchemaError", err)
	}
	if se.Column != table.LabelColumn {
		t.Fatalf("SchemaError.Column = %q, want label", se.Column)
	}
}

// TestOpen_EmptyInput checks a file with no header at all is rejected.
func TestOpen_EmptyInput(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "")
	_, err := Open(path, ReadOptions{})
	var se *table.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Open err = %v, want SchemaError", err)
	}
}

// TestOpen_MissingFile checks a nonexistent path is an IOError.
func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "nope.tsv"), ReadOptions{})
	var ioe *table.IOError
	if !errors.As(err, &ioe) {
		t.Fatalf("Open err = %v, want IOError", err)
	}
}

// TestReader_BOMAndCRLF verifies the header BOM is stripped and trailing CR
// bytes are removed from data rows.
func TestReader_BOMAndCRLF(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "\uFEFFnode1\tnode2\r\nQ1\tQ5\r\n")
	r, err := Open(path, ReadOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := r.Schema().Columns()[0]; got != "node1" {
		t.Fatalf("first column = %q, want node1 without BOM", got)
	}
	rows, err := table.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !reflect.DeepEqual(rows, []table.Row{{"Q1", "Q5"}}) {
		t.Fatalf("rows = %v", rows)
	}
}

// TestReader_FoldHeaders checks diacritics fold in header names only.
func TestReader_FoldHeaders(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "počet\tname\nč1\tx\n")
	r, err := Open(path, ReadOptions{FoldHeaders: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !r.Schema().Has("pocet") {
		t.Fatalf("folded schema = %v, want pocet", r.Schema().Columns())
	}
	rows, err := table.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	// Data cells keep their diacritics.
	if rows[0][0] != "č1" {
		t.Fatalf("cell = %q, want unfolded", rows[0][0])
	}
}

// TestReader_RowWidth exercises the short/long row policies.
func TestReader_RowWidth(t *testing.T) {
	t.Parallel()

	const content = "node1\tlabel\tnode2\nQ1\tP31\n"

	// Default: width mismatch is an error.
	r, err := Open(writeTempFile(t, content), ReadOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := table.ReadAll(r); err == nil {
		t.Fatal("short row accepted without FillShortRows")
	}

	// FillShortRows pads with empty cells.
	r, err = Open(writeTempFile(t, content), ReadOptions{FillShortRows: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rows, err := table.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !reflect.DeepEqual(rows, []table.Row{{"Q1", "P31", ""}}) {
		t.Fatalf("padded rows = %v", rows)
	}

	// TrimLongRows drops the excess.
	r, err = Open(writeTempFile(t, "node1\tlabel\nQ1\tP31\textra\n"), ReadOptions{TrimLongRows: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rows, err = table.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !reflect.DeepEqual(rows, []table.Row{{"Q1", "P31"}}) {
		t.Fatalf("trimmed rows = %v", rows)
	}
}

// TestParseCodec covers the accepted codec names and the error case.
func TestParseCodec(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Codec
		ok   bool
	}{
		{"", CodecNone, true},
		{"none", CodecNone, true},
		{"gzip", CodecGzip, true},
		{"gz", CodecGzip, true},
		{"xz", CodecXZ, true},
		{"zip", CodecNone, false},
	}
	for _, c := range cases {
		got, err := ParseCodec(c.in)
		if (err == nil) != c.ok || got != c.want {
			t.Errorf("ParseCodec(%q) = %q, %v", c.in, got, err)
		}
	}
}

// TestWrite_Stdout makes sure the "-" sink does not try to rename stdout.
func TestWrite_Stdout(t *testing.T) {
	// Not parallel: swaps os.Stdout.
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	done := make(chan string, 1)
	go func() {
		var b strings.Builder
		buf := make([]byte, 4096)
		for {
			n, err := r.Read(buf)
			b.Write(buf[:n])
			if err != nil {
				break
			}
		}
		done <- b.String()
	}()

	if _, err := Write("-", claimsStream(t), WriteOptions{Atomic: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Close()
	out := <-done
	if !strings.HasPrefix(out, "node1\tlabel\tnode2\n") {
		t.Fatalf("stdout output %q missing header", out)
	}
}

type closeRecorder struct {
	io.Closer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.Closer.Close()
}

// TestWriter_AbortClosesCodec checks abort finalizes the compression codec
// before tearing down the file, so an aborted compressed sink does not leak
// compressor state, and that the temp file is removed.
func TestWriter_AbortClosesCodec(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schema, err := table.NewSchema([]string{"node1"})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	w, err := NewWriter(filepath.Join(dir, "out.tsv.gz"), schema, WriteOptions{Codec: CodecGzip, Atomic: true})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	rec := &closeRecorder{Closer: w.codec}
	w.codec = rec
	w.abort()
	if !rec.closed {
		t.Fatal("abort left the codec open")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("abort left %d files behind", len(entries))
	}
}
