// Package config defines the JSON/YAML-serializable configuration model for
// declarative kgtab pipelines. It is intentionally small and explicit so that
// pipeline files can be loaded from disk and passed through the program
// without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure used in pipeline
//     files.
//  3. Minimalism: decoding is performed by the standard library (plus yaml.v3
//     for .yaml files), with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":    "count-entities",
//	  "source": { "path": "claims.tsv.gz", "codec": "gzip" },
//	  "stages": [
//	    { "kind": "filter", "options": { "column": "node2", "pattern": "^[PQ].*$" } },
//	    { "kind": "unique", "options": { "columns": ["node1"], "presorted": true } }
//	  ],
//	  "sink":   { "path": "counts.tsv", "atomic": true }
//	}
package config

import "encoding/json"

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the pipeline run; it labels logs and metrics.
	Job string `json:"job" yaml:"job"`

	// Source describes the primary input table.
	Source Source `json:"source" yaml:"source"`

	// Stages lists the ordered streaming operations applied to the source.
	// Each stage has a kind and an options bag whose shape is defined by the
	// stage implementation.
	Stages []Stage `json:"stages" yaml:"stages"`

	// Sink describes where the resulting table is written.
	Sink Sink `json:"sink" yaml:"sink"`

	// Runtime controls buffering.
	Runtime Runtime `json:"runtime" yaml:"runtime"`

	// Metrics optionally configures a metrics backend for the run.
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Source identifies the primary input table.
type Source struct {
	// Path is a local file path, "-" for stdin, or an http(s) URL.
	Path string `json:"path" yaml:"path"`

	// Codec names the compression envelope: "", "none", "gzip", or "xz".
	// The codec is always explicit; extensions are never sniffed.
	Codec string `json:"codec" yaml:"codec"`

	// EdgeFile requires the conventional node1/label/node2 columns.
	EdgeFile bool `json:"edge_file" yaml:"edge_file"`

	// FoldHeaders strips diacritics from header names on read.
	FoldHeaders bool `json:"fold_headers" yaml:"fold_headers"`

	// FillShortRows pads short rows with empty fields instead of failing.
	FillShortRows bool `json:"fill_short_rows" yaml:"fill_short_rows"`
}

// Stage defines a single streaming operation. The sequence of stages forms
// the pipeline executed front to back.
type Stage struct {
	// Kind selects the operation: "filter", "ifempty", "unique", or "lift".
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the selected operation.
	Options Options `json:"options" yaml:"options"`
}

// Sink selects where the resulting table stream is written.
type Sink struct {
	// Path is a local file path or "-" for stdout.
	Path string `json:"path" yaml:"path"`

	// Codec names the compression envelope, as for Source.
	Codec string `json:"codec" yaml:"codec"`

	// Atomic writes through a temp file renamed into place on success.
	Atomic bool `json:"atomic" yaml:"atomic"`
}

// Runtime controls buffering for a pipeline run.
type Runtime struct {
	// Prefetch is the row-channel depth used to decouple the reader onto its
	// own goroutine. Zero disables prefetching.
	Prefetch int `json:"prefetch" yaml:"prefetch"`
}

// Metrics configures the optional metrics backend.
type Metrics struct {
	// Backend is "pushgateway" or "" / "none".
	Backend string `json:"backend" yaml:"backend"`

	// URL is the Pushgateway base URL when Backend is "pushgateway".
	URL string `json:"url" yaml:"url"`
}

// Options is a small helper to fetch typed values from arbitrary JSON/YAML
// maps. It performs only minimal type coercion and returns provided defaults
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of
// strings (or an array of interface values containing strings). Returns nil
// when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key, which may itself be a nested map or
// slice. Useful for blocks unmarshaled into a typed struct by the caller.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON makes a missing or null "options" object decode to a non-nil,
// empty Options map, removing nil checks at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
