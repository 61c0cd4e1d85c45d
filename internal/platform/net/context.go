// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyCollectionID ctxKey = "collection_id"

// WithRequest annotates context with common request scoped ids
func WithRequest(ctx context.Context, reqID, collectionID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if collectionID != "" {
		ctx = context.WithValue(ctx, keyCollectionID, collectionID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return ""
}

// CollectionID returns the collection id on the context if present
func CollectionID(ctx context.Context) string {
	if v, ok := ctx.Value(keyCollectionID).(string); ok {
		return v
	}
	return ""
}
