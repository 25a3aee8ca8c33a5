package op

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"kgtab/internal/table"
)

// NewPrefetch decouples an upstream stage onto its own goroutine, pulling
// rows eagerly into a bounded channel. Downstream consumers keep the plain
// pull interface; back-pressure comes from the channel capacity.
//
// Useful in front of a decompressing reader so that I/O and downstream work
// overlap. Cancellation of ctx stops the producer; a producer error is
// surfaced by the next Next call (fail-fast).
func NewPrefetch(ctx context.Context, up table.Stream, depth int) table.Stream {
	if depth <= 0 {
		depth = 1024
	}
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	ch := make(chan table.Row, depth)
	p := &prefetchStream{up: up, ch: ch, g: g, cancel: cancel}

	g.Go(func() error {
		defer close(ch)
		for {
			row, err := up.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			// The upstream may reuse its row slice; the channel crosses a
			// goroutine boundary, so hand over a copy.
			cp := make(table.Row, len(row))
			copy(cp, row)

			select {
			case ch <- cp:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	return p
}

type prefetchStream struct {
	up     table.Stream
	ch     chan table.Row
	g      *errgroup.Group
	cancel context.CancelFunc
	done   bool
}

func (p *prefetchStream) Schema() *table.Schema { return p.up.Schema() }

func (p *prefetchStream) Next() (table.Row, error) {
	row, ok := <-p.ch
	if !ok {
		p.done = true
		if err := p.g.Wait(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return row, nil
}

func (p *prefetchStream) Close() error {
	p.cancel()
	// Drain so the producer is not blocked on a full channel.
	for range p.ch {
	}
	err := p.g.Wait()
	if cerr := p.up.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == context.Canceled {
		err = nil
	}
	return err
}
