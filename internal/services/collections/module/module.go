// Package module mounts collection resolution under its own route prefix
// It borrows the history service rather than owning a service of its own
package module

import (
	"net/http"

	modkit "historian/internal/modkit"
	"historian/internal/modkit/httpkit"
	histdom "historian/internal/services/history/domain"
	histhttp "historian/internal/services/history/http"
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
}

// Inject declares the history port this module requires from its caller
type Inject struct {
	History histdom.ServicePort
}

// New constructs the collections module around an injected history port
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("collections"),
		modkit.WithPrefix("/collections"),
	}, opts...)...)

	var injected Inject
	if p, ok := b.Ports.(Inject); ok {
		injected = p
	}
	if injected.History == nil {
		panic("collections module requires the history ServicePort")
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		ports:     injected,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		histhttp.RegisterResolve(r, injected.History)
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

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }
