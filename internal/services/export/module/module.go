// Package module wires the export lifecycle into the API using modkit
package module

import (
	"net/http"

	modkit "historian/internal/modkit"
	"historian/internal/modkit/httpkit"
	"historian/internal/modkit/repokit"
	exporthttp "historian/internal/services/export/http"
	"historian/internal/services/export/repo"
	exportsvc "historian/internal/services/export/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	mgr *exportsvc.Manager
}

// New constructs the export module with the provided dependencies and options
func New(deps modkit.Deps, opt Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("exports"), modkit.WithPrefix("/exports")}, opts...)...)

	var reg repo.Registry
	if opt.UsePG && deps.PG != nil {
		reg = repokit.MustBind(repo.NewPGBinder(), deps.PG)
	} else {
		reg = repo.NewMemory()
	}
	mgr := exportsvc.New(opt.Config, deps.Log, reg)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		mgr:       mgr,
	}
	m.ports = Ports{Exports: mgr}

	external := b.Register
	m.register = func(r httpkit.Router) {
		exporthttp.Register(r, m.mgr)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Manager exposes the export manager for in-process collaborators
func (m *Module) Manager() *exportsvc.Manager { return m.mgr }

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

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
