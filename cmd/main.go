// Command papersim runs the paper trading simulator: a websocket quote
// feed, a durable trading ledger and the dashboard HTTP API.
//
// Usage:
//
//	papersim --config config.yaml
//	papersim setup   (interactive wizard, then starts with the result)
//	papersim         (uses CLI arguments)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"papersim/config"
	"papersim/dashboard"
	"papersim/internal/services/ledger"
	"papersim/internal/services/marketwatch"
	"papersim/internal/setup"
	"papersim/internal/storage/state"
)

func main() {
	_ = godotenv.Load()

	var (
		cfg config.Config
		err error
	)
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		cfg, err = config.FromFile("config.gen.yaml")
	} else {
		cfg, err = config.Get()
	}
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	store, err := state.NewWALStore(cfg.StateDir)
	if err != nil {
		logger.Fatal("failed to open state store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache := marketwatch.NewCache()
	book := ledger.New(logger, store, cache, toastLogger{logger: logger}, cfg.TokenSupply)
	server := dashboard.NewServer(cfg.ListenAddr, book, logger)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.FeedURL != "" {
		feed := marketwatch.NewFeed(cfg.FeedURL, logger)
		watcher := marketwatch.NewWatcher(cache, feed, cfg.PollInterval, logger)
		g.Go(func() error { return feed.Run(ctx) })
		g.Go(func() error { return watcher.Run(ctx) })
	} else {
		logger.Info("no quote feed configured, using fallback prices")
	}

	g.Go(func() error {
		if len(cfg.TLSDomains) > 0 {
			return server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.CertCacheDir)
		}
		return server.Start(ctx)
	})

	logger.Info("simulator started", zap.String("listen", cfg.ListenAddr), zap.String("state_dir", cfg.StateDir))

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatal("simulator stopped", zap.Error(err))
	}
	logger.Info("simulator shut down")
}

// toastLogger surfaces trade outcome notifications into the process log.
type toastLogger struct {
	logger *zap.Logger
}

func (t toastLogger) Notify(message string, ok bool) {
	if ok {
		t.logger.Info("trade notification", zap.String("message", message))
		return
	}
	t.logger.Warn("trade notification", zap.String("message", message))
}
