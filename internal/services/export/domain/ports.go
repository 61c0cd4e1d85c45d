package domain

import (
	"context"

	"historian/internal/core/records"
)

// RecordIterator walks an exported resource one record at a time
type RecordIterator interface {
	// Next returns the next record, false when the resource is exhausted
	Next() (records.Record, bool)
	// Err reports a read failure that ended iteration early
	Err() error
	// Close releases the underlying reader and its pin on the resource
	Close() error
}

// ManagerPort is the export lifecycle contract other modules depend on
type ManagerPort interface {
	Create(ctx context.Context, recs []records.Record, meta Meta) (ResourceDescriptor, error)
	Read(ctx context.Context, id string) (ResourceDescriptor, RecordIterator, error)
	List(ctx context.Context) ([]ResourceDescriptor, error)
	Remove(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context) (int, error)
	ShouldExport(n int) bool
}
