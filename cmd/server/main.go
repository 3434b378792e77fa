package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ogurasousui/pin-roster/internal/adapters/httpapi"
	"github.com/ogurasousui/pin-roster/internal/app"
	"github.com/ogurasousui/pin-roster/internal/platform/config"
	"github.com/ogurasousui/pin-roster/internal/platform/server"
)

const drainTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := cfg.Log.NewLogger(os.Stderr)

	a, err := app.Open(ctx, *cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := a.Close(drainCtx); err != nil {
			logger.Error("pending writes were not saved", "error", err)
		}
	}()

	grpcServer := server.New(cfg.Server.ListenAddr, server.Services{
		Roster:   a.Roster,
		Ledger:   a.Ledger,
		Reporter: a.Report,
		Auth:     a.Auth,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Run(gctx)
	})
	if cfg.Server.HTTPAddr != "" {
		g.Go(func() error {
			return httpapi.Serve(gctx, cfg.Server.HTTPAddr, httpapi.NewRouter(a.Roster, a.Codec, logger), logger)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		return
	}
	logger.Info("server stopped")
}
