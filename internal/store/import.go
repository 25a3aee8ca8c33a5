package store

import (
	"context"
	"io"
	"log"
	"time"

	"kgtab/internal/table"
)

// DefaultBatchSize groups imported rows per insert/COPY call.
const DefaultBatchSize = 10000

// Import drains stream into the named table, creating it first with one TEXT
// column per stream column. Rows are grouped into batches; progress is logged
// per flush with running totals.
func Import(ctx context.Context, st Store, name string, stream table.Stream, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	defer stream.Close()

	columns := stream.Schema().Columns()
	if err := st.CreateTable(ctx, name, columns); err != nil {
		return 0, err
	}

	var (
		total   int64
		batches int64
		batch   = make([][]string, 0, batchSize)
		start   = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := st.InsertRows(ctx, name, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			return err
		}
		batches++
		elapsed := time.Since(start)
		rps := float64(total) / elapsed.Seconds()
		log.Printf("import: batch=%d rps=%.0f total=%d elapsed=%s",
			batches, rps, total, elapsed.Truncate(time.Millisecond))
		return nil
	}

	for {
		row, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, err
		}
		cp := make([]string, len(row))
		copy(cp, row)
		batch = append(batch, cp)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
