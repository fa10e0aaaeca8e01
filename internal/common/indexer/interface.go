package indexer

import (
	"context"

	"github.com/project-tktt/go-extractor/internal/domain"
)

// Indexer defines the interface for item record storage backends
type Indexer interface {
	// BulkIndex indexes multiple records at once
	BulkIndex(ctx context.Context, records []*domain.Record) error
}

// Multi fans records out to several backends, stopping at the first failure
type Multi []Indexer

func (m Multi) BulkIndex(ctx context.Context, records []*domain.Record) error {
	for _, idx := range m {
		if err := idx.BulkIndex(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
