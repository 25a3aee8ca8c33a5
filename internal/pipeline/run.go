// Package pipeline executes declarative pipeline configs: it opens the
// source, builds the configured operation stages, and drains the composed
// stream into the sink, keeping per-run statistics.
//
// Execution is fail-fast: the first error from any stage aborts the run and
// surfaces as a non-zero exit in the CLI. With an atomic sink no partial
// output file is left behind.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"kgtab/internal/config"
	"kgtab/internal/kgio"
	"kgtab/internal/metrics"
	"kgtab/internal/op"
	"kgtab/internal/table"
)

// Summary holds cross-stage statistics for one run.
type Summary struct {
	RowsRead    int64
	RowsWritten int64
	Elapsed     time.Duration
}

// Run executes a validated pipeline config end to end and returns the run
// summary. The caller is expected to have run config.ValidatePipeline first;
// Run still fails cleanly on anything validation cannot see (missing files,
// absent columns).
func Run(ctx context.Context, cfg config.Pipeline) (Summary, error) {
	job := cfg.Job
	if job == "" {
		job = "kgtab"
	}
	start := time.Now()

	var sum Summary

	src, err := openSource(cfg.Source)
	if err != nil {
		return sum, err
	}

	// Count rows leaving the reader so the summary can reconcile reads
	// against writes.
	var rowsRead atomic.Int64
	counted := &countingStream{up: src, n: &rowsRead}

	stream, err := buildStages(ctx, counted, cfg)
	if err != nil {
		counted.Close()
		return sum, err
	}

	sinkCodec, err := kgio.ParseCodec(cfg.Sink.Codec)
	if err != nil {
		stream.Close()
		return sum, err
	}

	stageStart := time.Now()
	written, err := kgio.Write(cfg.Sink.Path, stream, kgio.WriteOptions{
		Codec:  sinkCodec,
		Atomic: cfg.Sink.Atomic,
	})
	metrics.RecordStage(job, "write", err, time.Since(stageStart))

	sum.RowsRead = rowsRead.Load()
	sum.RowsWritten = written
	sum.Elapsed = time.Since(start)

	metrics.RecordRows(job, "read", sum.RowsRead)
	metrics.RecordRows(job, "written", sum.RowsWritten)
	if dropped := sum.RowsRead - sum.RowsWritten; dropped > 0 {
		metrics.RecordRows(job, "dropped", dropped)
	}

	if err != nil {
		return sum, fmt.Errorf("pipeline %s: %w", job, err)
	}

	log.Printf("summary: job=%s read=%d written=%d elapsed=%s",
		job, sum.RowsRead, sum.RowsWritten, sum.Elapsed.Truncate(time.Millisecond))
	return sum, nil
}

func openSource(src config.Source) (table.Stream, error) {
	codec, err := kgio.ParseCodec(src.Codec)
	if err != nil {
		return nil, err
	}
	return kgio.Open(src.Path, kgio.ReadOptions{
		Codec:         codec,
		EdgeFile:      src.EdgeFile,
		FoldHeaders:   src.FoldHeaders,
		FillShortRows: src.FillShortRows,
	})
}

// buildStages translates config stages into op stages over the source stream.
func buildStages(ctx context.Context, src table.Stream, cfg config.Pipeline) (table.Stream, error) {
	p := op.NewPipeline(src)

	if cfg.Runtime.Prefetch > 0 {
		p = p.Prefetch(ctx, cfg.Runtime.Prefetch)
	}

	for i, st := range cfg.Stages {
		switch st.Kind {
		case "filter":
			column := st.Options.String("column", "")
			pattern := st.Options.String("pattern", "")
			if st.Options.Bool("regex", true) {
				p = p.Filter(column, pattern)
			} else {
				p = p.FilterValue(column, pattern)
			}

		case "ifempty":
			p = p.FilterEmpty(
				st.Options.StringSlice("columns"),
				op.EmptyMode(st.Options.String("mode", "any")),
				st.Options.Bool("not_empty", false),
			)

		case "unique":
			p = p.Unique(st.Options.StringSlice("columns"), op.UniqueOptions{
				CountLabel: st.Options.String("label", ""),
				Presorted:  st.Options.Bool("presorted", false),
			})

		case "lift":
			labelFile := st.Options.String("label_file", "")
			labelCodec, err := kgio.ParseCodec(st.Options.String("codec", ""))
			if err != nil {
				return nil, err
			}
			labels := func() (table.Stream, error) {
				return kgio.Open(labelFile, kgio.ReadOptions{Codec: labelCodec})
			}
			p = p.Lift(labels, st.Options.StringSlice("columns"), op.LiftOptions{
				MatchColumn:      st.Options.String("match_column", ""),
				ValueColumn:      st.Options.String("value_column", ""),
				OutputColumns:    st.Options.StringSlice("output_columns"),
				PrimaryPresorted: st.Options.Bool("input_presorted", false),
				LabelPresorted:   st.Options.Bool("label_presorted", false),
			})

		default:
			return nil, fmt.Errorf("stages[%d]: unsupported kind %q", i, st.Kind)
		}
	}

	return p.Stream()
}

// countingStream counts rows passing through it.
type countingStream struct {
	up table.Stream
	n  *atomic.Int64
}

func (c *countingStream) Schema() *table.Schema { return c.up.Schema() }

func (c *countingStream) Next() (table.Row, error) {
	row, err := c.up.Next()
	if err == nil {
		c.n.Add(1)
	} else if err != io.EOF {
		return nil, err
	}
	return row, err
}

func (c *countingStream) Close() error { return c.up.Close() }
