package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brsiege/r6-roulette-backend/internal/catalog"
	"github.com/brsiege/r6-roulette-backend/internal/clock"
	"github.com/brsiege/r6-roulette-backend/internal/config"
	"github.com/brsiege/r6-roulette-backend/internal/httpapi"
	"github.com/brsiege/r6-roulette-backend/internal/random"
	"github.com/brsiege/r6-roulette-backend/internal/session"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	cat := catalog.Default()
	if cfg.OperatorsDir != "" {
		cat, err = catalog.LoadDir(cfg.OperatorsDir)
		if err != nil {
			logger.Fatal("loading operators", zap.Error(err))
		}
	}
	logger.Info("operators loaded",
		zap.Int("attackers", len(cat.Attackers)),
		zap.Int("defenders", len(cat.Defenders)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := session.New(ctx, session.Config{
		AppPassword:     cfg.AppPassword,
		AdminPassword:   cfg.AdminPassword,
		CooldownSeconds: cfg.CooldownSeconds,
	}, cat, clock.New(), random.New(), logger)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(sess, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
