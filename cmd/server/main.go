package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/MichaelKoga/C2C/internal/cache"
	"github.com/MichaelKoga/C2C/internal/config"
	"github.com/MichaelKoga/C2C/internal/handler/health"
	"github.com/MichaelKoga/C2C/internal/server"
	"github.com/MichaelKoga/C2C/internal/standings"
	"github.com/MichaelKoga/C2C/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Store ---
	st, closeStore, err := store.Open(ctx, cfg.Store())
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	defer closeStore()
	logger.Info("store ready", "backend", cfg.StoreBackend)

	checks := map[string]health.Checker{
		"store": health.CheckFunc(st.Ping),
	}

	// --- Redis (optional) ---
	var c cache.Cache = cache.Nop{}
	if cfg.RedisURL != "" {
		rdb, err := cache.Open(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()

		r := cache.NewRedis(rdb, cfg.CacheTTL)
		c = r
		checks["redis"] = r
		logger.Info("connected to redis", "ttl", cfg.CacheTTL.String())
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := standings.NewService(st, c, standings.NewMetrics(reg), logger, standings.Options{
		HandicapSince: cfg.HandicapSinceDate(),
		Filter:        cfg.Filter(),
	})

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:       st,
		Standings:   svc,
		Checks:      checks,
		Registry:    reg,
		Videos:      cfg.Videos,
		SPADir:      cfg.SPADir,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   rate.Limit(cfg.RateLimitRPS),
		Burst:       cfg.RateLimitBurst,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
