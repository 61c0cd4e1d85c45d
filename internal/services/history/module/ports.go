package module

import (
	"context"

	histdom "historian/internal/services/history/domain"
	histsvc "historian/internal/services/history/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptHistoryPort adapts the history service to the domain port interface
type adaptHistoryPort struct{ svc histsvc.Service }

// Fetch implements the domain ServicePort interface
func (a adaptHistoryPort) Fetch(ctx context.Context, in histdom.FetchInput) (histdom.FetchResult, error) {
	return a.svc.Fetch(ctx, in)
}

// Resolve implements the domain ServicePort interface
func (a adaptHistoryPort) Resolve(ctx context.Context, identifier string) (histdom.CollectionInfo, error) {
	return a.svc.Resolve(ctx, identifier)
}
