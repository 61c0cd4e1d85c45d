package domain

import (
	"context"

	"historian/internal/core/paginate"
	"historian/internal/core/records"
)

// UpstreamPort is the external source of collections and records
// Implementations may fail with flow-control (carrying a wait), not-found,
// forbidden, or transient errors from the platform taxonomy
type UpstreamPort interface {
	ResolveCollection(ctx context.Context, identifier string) (CollectionInfo, error)
	FetchRecords(ctx context.Context, collectionID string, p paginate.FetchParams) ([]records.Record, error)
}

// ServicePort defines the history service contract
type ServicePort interface {
	Fetch(ctx context.Context, in FetchInput) (FetchResult, error)
	Resolve(ctx context.Context, identifier string) (CollectionInfo, error)
}
