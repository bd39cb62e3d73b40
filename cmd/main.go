// Command papertrader runs the stock trading simulator game: a random-walk
// price feed, a cash/shares ledger and a browser UI served over HTTP.
//
// Usage:
//
//	papertrader --config config.yaml
//	papertrader -tick 3s -window 50 -cash 100000 (uses CLI arguments)
//	papertrader setup (interactive wizard, writes config.gen.yaml and starts)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/papertrader/config"
	"github.com/vadiminshakov/papertrader/internal"
	"github.com/vadiminshakov/papertrader/internal/setup"
	"github.com/vadiminshakov/papertrader/internal/web"
)

func main() {
	conf, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	session, err := internal.NewSession(conf, logger)
	if err != nil {
		logger.Fatal("failed to create session", zap.Error(err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("failed to close session", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(conf.ListenAddr, session.Simulator(), session.Events(), conf.Currency, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(gctx)
	})
	g.Go(func() error {
		if len(conf.TLSDomains) > 0 {
			return server.StartWithAutoTLS(gctx, conf.TLSDomains, conf.CertCacheDir)
		}
		return server.Start(gctx)
	})

	logger.Info("papertrader started",
		zap.String("session", session.ID),
		zap.String("addr", conf.ListenAddr),
		zap.String("cash", conf.InitialCash.String()),
		zap.String("price", conf.InitialPrice.String()))

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("papertrader stopped", zap.Error(err))
		return
	}
	logger.Info("papertrader stopped")
}

func loadConfig() (config.Config, error) {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			return config.Config{}, err
		}
		return config.Parse([]string{"-config", setup.ConfigFile})
	}
	return config.Get()
}
