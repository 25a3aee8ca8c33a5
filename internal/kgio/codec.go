// Package kgio reads and writes KGTK-style delimited table files: tab-separated
// text whose first row is a header naming the columns, optionally wrapped in a
// compression envelope.
//
// The compression codec is always selected by an explicit option, never by
// sniffing the file extension; callers that want extension-driven behavior can
// do the mapping themselves before calling Open.
package kgio

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Codec names a transparent compression envelope.
type Codec string

const (
	CodecNone Codec = ""
	CodecGzip Codec = "gzip"
	CodecXZ   Codec = "xz"
)

// ParseCodec maps a CLI codec name onto a Codec. "none" and the empty string
// both mean no compression.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return CodecNone, nil
	case "gzip", "gz":
		return CodecGzip, nil
	case "xz":
		return CodecXZ, nil
	default:
		return CodecNone, fmt.Errorf("unknown codec %q (want none, gzip, or xz)", name)
	}
}

// wrapReader layers the decompression codec over r. The returned closer
// releases codec state; the caller still owns closing r itself.
func wrapReader(r io.Reader, c Codec) (io.Reader, io.Closer, error) {
	switch c {
	case CodecNone:
		return r, nopCloser{}, nil
	case CodecGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr, nil
	case CodecXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown codec %q", c)
	}
}

// wrapWriter layers the compression codec over w. The returned closer must be
// closed before the underlying sink to flush codec trailers.
func wrapWriter(w io.Writer, c Codec) (io.Writer, io.Closer, error) {
	switch c {
	case CodecNone:
		return w, nopCloser{}, nil
	case CodecGzip:
		zw := gzip.NewWriter(w)
		return zw, zw, nil
	case CodecXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return xw, xw, nil
	default:
		return nil, nil, fmt.Errorf("unknown codec %q", c)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
