package op

import (
	"context"

	"kgtab/internal/table"
)

// Pipeline is a fluent builder over streaming stages. Construction errors are
// captured and returned from Stream, so call sites can chain without checking
// every step:
//
//	s, err := op.NewPipeline(src).
//		Filter("node2", `^[PQ].*$`).
//		Unique([]string{"node1"}, op.UniqueOptions{CountLabel: "node1-entity-count"}).
//		Stream()
//
// Each stage's output stream is the next stage's input; nothing is persisted
// between stages, and only stages that inherently materialize (unsorted
// aggregation, hash lift) hold more than one row at a time.
type Pipeline struct {
	s   table.Stream
	err error
}

// NewPipeline starts a pipeline at src.
func NewPipeline(src table.Stream) *Pipeline {
	return &Pipeline{s: src}
}

// Filter appends a regex column filter stage.
func (p *Pipeline) Filter(column, pattern string) *Pipeline {
	return p.wrap(func(up table.Stream) (table.Stream, error) {
		return NewRegexFilter(up, column, pattern)
	})
}

// FilterValue appends an exact-match column filter stage.
func (p *Pipeline) FilterValue(column, value string) *Pipeline {
	return p.wrap(func(up table.Stream) (table.Stream, error) {
		return NewValueFilter(up, column, value)
	})
}

// FilterEmpty appends an empty/non-empty column filter stage.
func (p *Pipeline) FilterEmpty(columns []string, mode EmptyMode, notEmpty bool) *Pipeline {
	return p.wrap(func(up table.Stream) (table.Stream, error) {
		return NewEmptyFilter(up, columns, mode, notEmpty)
	})
}

// Unique appends a unique/count aggregation stage.
func (p *Pipeline) Unique(keyColumns []string, opts UniqueOptions) *Pipeline {
	return p.wrap(func(up table.Stream) (table.Stream, error) {
		return NewUnique(up, keyColumns, opts)
	})
}

// Lift appends a label-lift stage.
func (p *Pipeline) Lift(labels LabelSource, columns []string, opts LiftOptions) *Pipeline {
	return p.wrap(func(up table.Stream) (table.Stream, error) {
		return NewLift(up, labels, columns, opts)
	})
}

// Prefetch appends a goroutine-backed prefetch stage.
func (p *Pipeline) Prefetch(ctx context.Context, depth int) *Pipeline {
	return p.wrap(func(up table.Stream) (table.Stream, error) {
		return NewPrefetch(ctx, up, depth), nil
	})
}

// Stream returns the composed stream, or the first construction error.
func (p *Pipeline) Stream() (table.Stream, error) {
	if p.err != nil {
		if p.s != nil {
			p.s.Close()
		}
		return nil, p.err
	}
	return p.s, nil
}

func (p *Pipeline) wrap(build func(table.Stream) (table.Stream, error)) *Pipeline {
	if p.err != nil {
		return p
	}
	s, err := build(p.s)
	if err != nil {
		p.err = err
		return p
	}
	p.s = s
	return p
}
