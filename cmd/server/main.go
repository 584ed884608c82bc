package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dibyam12/SMS-backend/internal/auth"
	"github.com/dibyam12/SMS-backend/internal/config"
	"github.com/dibyam12/SMS-backend/internal/db"
	"github.com/dibyam12/SMS-backend/internal/http"
	"github.com/dibyam12/SMS-backend/internal/ratelimit"
	"github.com/dibyam12/SMS-backend/internal/repository"
	"github.com/dibyam12/SMS-backend/internal/service"
	"github.com/dibyam12/SMS-backend/internal/session"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessions := session.Disabled()
	var redisClient redis.UniversalClient
	if cfg.UseRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			// Refresh tokens are unavailable without the session store, but
			// the rest of the API still serves.
			logger.Warn("redis unreachable, refresh tokens disabled", zap.Error(err))
			_ = client.Close()
		} else {
			redisClient = client
			sessions = session.NewRedis(client)
			defer func() { _ = client.Close() }()
		}
	}

	store := repository.NewStore(pool)
	issuer := auth.NewIssuer(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	limiter := ratelimit.New(redisClient, cfg.LoginRateWindow, cfg.LoginRateMax)
	authSvc := service.NewAuth(store, sessions, issuer, logger)

	server := http.NewServer(cfg, store, authSvc, issuer, limiter, logger)
	httpServer := &nethttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.Bool("redis", sessions.Enabled()))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
