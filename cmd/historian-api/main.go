package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"historian/internal/modkit/repokit"
	"historian/internal/platform/config"
	"historian/internal/platform/logger"
	phttp "historian/internal/platform/net/http"
	"historian/internal/platform/store"

	"historian/internal/adapters/upstream"
	"historian/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	exportCfg := root.Prefix("CORE_EXPORT_")
	pgCfg := root.Prefix("SERVICE_PGSQL_") // pgCfg lives under SERVICE_PGSQL_*

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres only backs the durable export registry, so it is opt-in
	var st *store.Store
	if exportCfg.MayBool("PG", false) {
		var err error
		st, err = store.Open(
			ctx,
			store.Config{
				PG: store.PGConfig{
					Enabled:     true,
					URL:         pgCfg.MustString("DBURL"),
					MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
					SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
					LogSQL:      pgCfg.MayBool("LOG_SQL", false),
				},
			},
			store.WithLogger(*l),
		)
		if err != nil {
			l.Panic().Err(err).Msg("store.Open failed")
		}
		repokit.MustGuard(ctx, st)
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
	}

	// seeded upstream for local runs; production wires a real source here
	src := upstream.New(*logger.Named("upstream"))
	if apiCfg.MayBool("SEED_DEMO", true) {
		src.SeedDemo()
	}

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			Upstream:       src,
			Ctx:            ctx,
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			l.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
