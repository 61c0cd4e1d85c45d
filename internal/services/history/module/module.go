// Package module wires history retrieval into the API using modkit
package module

import (
	"net/http"

	modkit "historian/internal/modkit"
	"historian/internal/modkit/httpkit"
	exportdom "historian/internal/services/export/domain"
	histdom "historian/internal/services/history/domain"
	histhttp "historian/internal/services/history/http"
	histsvc "historian/internal/services/history/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc histsvc.Service
}

// Inject declares the collaborators this module requires from its caller
type Inject struct {
	Upstream histdom.UpstreamPort
	Exports  exportdom.ManagerPort
}

// New constructs the history module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("history"), modkit.WithPrefix("/history")}, opts...)...)

	opt := FromConfig(deps.Cfg)

	var injected Inject
	if p, ok := b.Ports.(Inject); ok {
		injected = p
	}
	if injected.Upstream == nil {
		panic("history module requires an UpstreamPort")
	}
	if injected.Exports == nil {
		panic("history module requires the export ManagerPort (from services/export)")
	}

	svc := histsvc.New(opt.Config, deps.Log, injected.Upstream, injected.Exports)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptHistoryPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		histhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
