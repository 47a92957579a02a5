package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sjavs/internal/api"
	"sjavs/internal/app"
	"sjavs/internal/auth"
	"sjavs/internal/config"
	"sjavs/internal/store"
	"sjavs/internal/ws"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration error", zap.Error(err))
	}

	rdb := store.NewClient(cfg.RedisAddr)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	var verifier auth.Verifier
	if cfg.DevAuth {
		log.Warn("running with development auth; tokens are trusted as user ids")
		verifier = auth.StaticVerifier{}
	} else {
		verifier = auth.NewJWKSVerifier(cfg.JWKSEndpoint, log)
	}

	repo := store.New(rdb, log)
	publisher := store.NewPublisher(rdb, log)
	locker := store.NewLocker(rdb, log, cfg.LockTTL)
	svc := app.NewService(repo, publisher, locker, log, app.Options{
		NumberOfCrosses: cfg.NumberOfCrosses,
		RubberReset:     cfg.RubberReset,
	}, nil)

	hub := ws.NewHub(svc, log, cfg.AllowedOrigin)
	subscriber := store.NewSubscriber(rdb, hub, log)
	go subscriber.Run(ctx)

	server := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.NewServer(svc, hub, verifier, log).Router(cfg.AllowedOrigin),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("sjavs server listening",
		zap.String("addr", cfg.BindAddr),
		zap.String("redis", cfg.RedisAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}
