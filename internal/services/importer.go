// Package services holds application workflows that span more than one
// store.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"insights/internal/store"
)

const DefaultBatchSize = 100

// Importer copies every transaction from a source into a writer in batches.
// Writers upsert by id, so running an import twice is harmless.
type Importer struct {
	source    store.TransactionSource
	sink      store.TransactionWriter
	batchSize int
}

func NewImporter(source store.TransactionSource, sink store.TransactionWriter, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{
		source:    source,
		sink:      sink,
		batchSize: batchSize,
	}
}

// Import returns the number of transactions written. On failure the batches
// already written stay written.
func (i *Importer) Import(ctx context.Context) (int, error) {
	txs, err := i.source.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	written := 0
	for start := 0; start < len(txs); start += i.batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		end := min(start+i.batchSize, len(txs))
		if err := i.sink.InsertTransactions(ctx, txs[start:end]); err != nil {
			return written, fmt.Errorf("insert batch %d-%d: %w", start, end, err)
		}
		written = end

		slog.DebugContext(ctx, "Imported transaction batch", "from", start, "to", end)
	}

	slog.InfoContext(ctx, "Transactions imported", "count", written)
	return written, nil
}
