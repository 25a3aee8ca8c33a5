package kgio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"kgtab/internal/table"
)

// ReadOptions controls how a table source is opened and parsed.
type ReadOptions struct {
	// Delimiter separates fields. Zero means tab.
	Delimiter byte

	// Codec selects the decompression envelope (explicit, no sniffing).
	Codec Codec

	// RequireColumns lists columns that must be present in the header.
	// A missing column is a SchemaError at open time.
	RequireColumns []string

	// EdgeFile additionally requires the conventional node1/label/node2
	// columns, the KGTK edge-file contract.
	EdgeFile bool

	// FillShortRows pads rows that have fewer fields than the header with
	// empty strings instead of failing.
	FillShortRows bool

	// TrimLongRows drops trailing fields beyond the header width instead of
	// failing.
	TrimLongRows bool

	// FoldHeaders strips diacritics from header names (NFD → remove marks →
	// NFC) so that e.g. "Počet" and "Pocet" resolve to the same column.
	// Data cells are never touched.
	FoldHeaders bool
}

func (o ReadOptions) delimiter() byte {
	if o.Delimiter == 0 {
		return '\t'
	}
	return o.Delimiter
}

// Reader streams rows from one delimited table source. It implements
// table.Stream.
type Reader struct {
	path    string
	schema  *table.Schema
	scanner *bufio.Scanner
	delim   string
	opts    ReadOptions

	src   io.Closer // underlying file/stdin/http body
	codec io.Closer // decompressor state

	line int64
	row  []string
}

// scanBufSize bounds a single line; KGTK rows with long literals can get big.
const scanBufSize = 4 << 20

// Open opens a delimited table source and reads its header. path may be a
// local file, "-" for stdin, or an http(s) URL.
func Open(path string, opts ReadOptions) (*Reader, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, &table.IOError{Op: "open", Path: path, Err: err}
	}

	plain, codecCloser, err := wrapReader(src, opts.Codec)
	if err != nil {
		src.Close()
		return nil, &table.IOError{Op: "open", Path: path, Err: err}
	}

	sc := bufio.NewScanner(plain)
	sc.Buffer(make([]byte, 64<<10), scanBufSize)

	r := &Reader{
		path:    path,
		scanner: sc,
		delim:   string(opts.delimiter()),
		opts:    opts,
		src:     src,
		codec:   codecCloser,
	}

	if err := r.readHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return &table.IOError{Op: "read", Path: r.path, Err: err}
		}
		return &table.SchemaError{Msg: "empty input: missing header row"}
	}
	cells := strings.Split(r.scanner.Text(), r.delim)
	names := make([]string, len(cells))
	for i, c := range cells {
		if i == 0 {
			c = strings.TrimPrefix(c, "\uFEFF")
		}
		names[i] = normalizeHeader(c, r.opts.FoldHeaders)
	}

	schema, err := table.NewSchema(names)
	if err != nil {
		return err
	}

	required := r.opts.RequireColumns
	if r.opts.EdgeFile {
		required = append([]string{table.Node1Column, table.LabelColumn, table.Node2Column}, required...)
	}
	for _, c := range required {
		if !schema.Has(c) {
			return &table.SchemaError{Column: c, Msg: "not present in input"}
		}
	}

	r.schema = schema
	r.row = make([]string, schema.Len())
	return nil
}

// Schema returns the header-derived schema.
func (r *Reader) Schema() *table.Schema { return r.schema }

// Next returns the next data row. The returned slice is reused across calls.
func (r *Reader) Next() (table.Row, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, &table.IOError{Op: "read", Path: r.path, Err: err}
		}
		return nil, io.EOF
	}
	r.line++

	line := r.scanner.Text()
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}

	cells := strings.Split(line, r.delim)
	want := r.schema.Len()
	switch {
	case len(cells) == want:
	case len(cells) < want && r.opts.FillShortRows:
		for len(cells) < want {
			cells = append(cells, "")
		}
	case len(cells) > want && r.opts.TrimLongRows:
		cells = cells[:want]
	default:
		return nil, fmt.Errorf("%s: row %d: got %d fields, header has %d",
			r.path, r.line, len(cells), want)
	}

	copy(r.row, cells)
	return r.row, nil
}

// Close releases the decompressor and the underlying source.
func (r *Reader) Close() error {
	cerr := r.codec.Close()
	if err := r.src.Close(); err != nil {
		return err
	}
	return cerr
}

// headerFolder strips combining marks: NFD decomposition, remove Mn runes,
// recompose.
var headerFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeHeader(name string, fold bool) string {
	if fold {
		if folded, _, err := transform.String(headerFolder, name); err == nil {
			return folded
		}
		return name
	}
	return norm.NFC.String(name)
}
