package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/elipaulman/hack-ohio-2025/config"
	"github.com/elipaulman/hack-ohio-2025/floors"
	"github.com/elipaulman/hack-ohio-2025/ingest"
	"github.com/elipaulman/hack-ohio-2025/logger"
	"github.com/elipaulman/hack-ohio-2025/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLogger(logger.NewText(cfg.LogLevel))
	lg := logger.Logger()

	stairs, err := loadStairs(cfg.Stairs)
	if err != nil {
		log.Fatalf("Failed to load stair table: %v", err)
	}

	loadOpts := floors.LoadOptions{
		Build:       cfg.BuildOptions(),
		Query:       cfg.QueryOptions(),
		Parallelism: cfg.LoadParallelism,
	}
	reload := func(ctx context.Context) (*floors.Registry, floors.LoadErrors, error) {
		m, err := ingest.LoadManifest(cfg.Manifest)
		if err != nil {
			return nil, nil, err
		}
		return floors.LoadRegistry(ctx, m, stairs, loadOpts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, failed, err := reload(ctx)
	if err != nil {
		log.Fatalf("Failed to load floors: %v", err)
	}
	if failed != nil {
		lg.Warn("some floors are unavailable", "error", failed)
	}
	store := floors.NewStore(reg)

	srv := server.New(store, reload, server.Options{RouteTimeout: cfg.RouteTimeout})
	lg.Info("server starting", "addr", cfg.Addr, "floors", reg.Floors(), "connectors", stairs.Len())
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	lg.Info("server stopped")
}

func loadStairs(path string) (*floors.StairTable, error) {
	if path == "" {
		return floors.DefaultStairTable()
	}
	return floors.LoadStairTableFile(path)
}
