// Package api provides the HTTP API for the application
package api

import (
	"context"
	stdhttp "net/http"

	"historian/internal/platform/config"
	"historian/internal/platform/logger"
	phttp "historian/internal/platform/net/http"
	"historian/internal/platform/store"

	"historian/internal/modkit"
	"historian/internal/modkit/httpkit"
	"historian/internal/modkit/module"

	histdom "historian/internal/services/history/domain"

	metamod "historian/internal/services/api/meta/module"
	collectionsmod "historian/internal/services/collections/module"
	exportmod "historian/internal/services/export/module"
	historymod "historian/internal/services/history/module"
)

// Options are the API options
type Options struct {
	Config config.Conf
	Store  *store.Store
	Logger *logger.Logger

	// Upstream is the record source backing history retrieval
	Upstream histdom.UpstreamPort

	// Ctx bounds background workers (the export reaper), nil disables them
	Ctx context.Context

	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	// exports first: history depends on its manager port
	exports := exportmod.New(deps, exportmod.FromConfig(deps.Cfg))
	expPorts := module.MustPortsOf[exportmod.Ports](exports)
	if opt.Ctx != nil {
		exports.Manager().StartReaper(opt.Ctx)
	}

	history := historymod.New(deps, modkit.WithPorts(historymod.Inject{
		Upstream: opt.Upstream,
		Exports:  expPorts.Exports,
	}))
	histPorts := module.MustPortsOf[histdom.ServicePort](history)

	collections := collectionsmod.New(deps, modkit.WithPorts(collectionsmod.Inject{
		History: histPorts,
	}))

	mods := []module.Module{
		metamod.New(deps),
		exports,
		history,
		collections,
	}

	// liveness probe outside the versioned tree
	r.Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
