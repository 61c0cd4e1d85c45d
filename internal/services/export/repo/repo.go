// Package repo provides descriptor registries for exports
package repo

import (
	"context"
	"sort"
	"sync"

	"historian/internal/services/export/domain"
)

// Registry stores export resource descriptors
// It is the only shared mutable state in the export lifecycle
type Registry interface {
	Put(ctx context.Context, d domain.ResourceDescriptor) error
	Get(ctx context.Context, id string) (domain.ResourceDescriptor, bool, error)
	List(ctx context.Context) ([]domain.ResourceDescriptor, error)
	Delete(ctx context.Context, id string) error
}

// Memory is the default in-process registry
type Memory struct {
	mu sync.RWMutex
	m  map[string]domain.ResourceDescriptor
}

// NewMemory creates an empty in-memory registry
func NewMemory() *Memory {
	return &Memory{m: make(map[string]domain.ResourceDescriptor)}
}

// Put stores or replaces a descriptor
func (r *Memory) Put(_ context.Context, d domain.ResourceDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[d.ResourceID] = d
	return nil
}

// Get returns a descriptor by id
func (r *Memory) Get(_ context.Context, id string) (domain.ResourceDescriptor, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.m[id]
	return d, ok, nil
}

// List returns all descriptors ordered by creation time, newest first
func (r *Memory) List(_ context.Context) ([]domain.ResourceDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ResourceDescriptor, 0, len(r.m))
	for _, d := range r.m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a descriptor, missing ids are a no-op
func (r *Memory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}
