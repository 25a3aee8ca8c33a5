package kgio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"kgtab/internal/table"
)

// WriteOptions controls how a table sink is created and serialized.
type WriteOptions struct {
	// Delimiter separates fields. Zero means tab.
	Delimiter byte

	// Codec selects the compression envelope.
	Codec Codec

	// Atomic writes to a temp file in the sink's directory and renames it
	// into place on Close, so a killed run never leaves a partial file.
	// Ignored for stdout.
	Atomic bool
}

func (o WriteOptions) delimiter() byte {
	if o.Delimiter == 0 {
		return '\t'
	}
	return o.Delimiter
}

// Writer serializes rows to a delimited table sink, header first.
type Writer struct {
	path     string
	tmpPath  string
	schema   *table.Schema
	delim    string
	buf      *bufio.Writer
	codec    io.Closer
	file     *os.File // nil when writing to stdout
	rows     int64
	closed   bool
	renameTo string // non-empty in atomic mode
}

// NewWriter creates the sink, writes the header row, and returns a Writer.
// path "-" writes to stdout.
func NewWriter(path string, schema *table.Schema, opts WriteOptions) (*Writer, error) {
	w := &Writer{
		path:   path,
		schema: schema,
		delim:  string(opts.delimiter()),
	}

	var sink io.Writer
	switch {
	case path == "-":
		sink = os.Stdout
	case opts.Atomic:
		tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
		if err != nil {
			return nil, &table.IOError{Op: "open", Path: path, Err: err}
		}
		w.file = tmp
		w.tmpPath = tmp.Name()
		w.renameTo = path
		sink = tmp
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, &table.IOError{Op: "open", Path: path, Err: err}
		}
		w.file = f
		sink = f
	}

	compressed, codecCloser, err := wrapWriter(sink, opts.Codec)
	if err != nil {
		w.abort()
		return nil, &table.IOError{Op: "open", Path: path, Err: err}
	}
	w.codec = codecCloser
	w.buf = bufio.NewWriterSize(compressed, 256<<10)

	if err := w.writeLine(schema.Columns()); err != nil {
		w.abort()
		return nil, err
	}
	return w, nil
}

// WriteRow appends one row. The row width must match the schema.
func (w *Writer) WriteRow(row table.Row) error {
	if err := w.writeLine(row); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written so far (excluding the header).
func (w *Writer) Rows() int64 { return w.rows }

func (w *Writer) writeLine(cells []string) error {
	if _, err := w.buf.WriteString(strings.Join(cells, w.delim)); err != nil {
		return &table.IOError{Op: "write", Path: w.path, Err: err}
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return &table.IOError{Op: "write", Path: w.path, Err: err}
	}
	return nil
}

// Close flushes buffers, finalizes the codec, and in atomic mode renames the
// temp file into place. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		w.abort()
		return &table.IOError{Op: "write", Path: w.path, Err: err}
	}
	if err := w.codec.Close(); err != nil {
		w.abort()
		return &table.IOError{Op: "write", Path: w.path, Err: err}
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			w.abort()
			return &table.IOError{Op: "close", Path: w.path, Err: err}
		}
		if w.renameTo != "" {
			if err := os.Rename(w.tmpPath, w.renameTo); err != nil {
				os.Remove(w.tmpPath)
				return &table.IOError{Op: "rename", Path: w.renameTo, Err: err}
			}
		}
	}
	return nil
}

// abort tears down a half-built writer, removing any temp file. The codec is
// closed before the file, mirroring Close; its error is discarded because the
// output is being thrown away anyway.
func (w *Writer) abort() {
	w.closed = true
	if w.codec != nil {
		w.codec.Close()
	}
	if w.file != nil {
		w.file.Close()
		if w.tmpPath != "" {
			os.Remove(w.tmpPath)
		}
	}
}

// Write drains stream into the sink at path and closes both. It returns the
// number of data rows written.
func Write(path string, stream table.Stream, opts WriteOptions) (int64, error) {
	defer stream.Close()

	w, err := NewWriter(path, stream.Schema(), opts)
	if err != nil {
		return 0, err
	}
	for {
		row, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			w.abort()
			return w.rows, err
		}
		if err := w.WriteRow(row); err != nil {
			w.abort()
			return w.rows, err
		}
	}
	if err := w.Close(); err != nil {
		return w.rows, err
	}
	return w.rows, nil
}
