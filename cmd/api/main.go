// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/uknown-one/stellarAds/internal/affiliate"
	"github.com/uknown-one/stellarAds/internal/auth"
	"github.com/uknown-one/stellarAds/internal/config"
	"github.com/uknown-one/stellarAds/internal/core"
	"github.com/uknown-one/stellarAds/internal/health"
	"github.com/uknown-one/stellarAds/internal/listing"
	"github.com/uknown-one/stellarAds/internal/middleware"
	"github.com/uknown-one/stellarAds/internal/server"
	"github.com/uknown-one/stellarAds/internal/transaction"
	"github.com/uknown-one/stellarAds/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "HS256",
		"token_expire", cfg.JWT.TokenExpire,
	)

	txnRepo := transaction.NewRepository(db.DB)
	txnSvc := transaction.NewService(txnRepo)
	txnHandler := transaction.NewHandler(txnSvc)

	affiliateRepo := affiliate.NewRepository(db.DB)
	affiliateSvc := affiliate.NewService(affiliateRepo, cfg.Marketplace)
	affiliateHandler := affiliate.NewHandler(affiliateSvc)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(
		db.DB,
		userRepo,
		txnSvc,
		affiliateSvc,
		cfg.Marketplace,
	)
	userHandler := user.NewHandler(userSvc)

	listingRepo := listing.NewRepository(db.DB)
	listingSvc := listing.NewService(
		db.DB,
		listingRepo,
		userSvc,
		txnSvc,
		cfg.Marketplace,
	)
	listingHandler := listing.NewHandler(listingSvc)

	authSvc := auth.NewService(db.DB, jwtManager, userSvc, affiliateSvc)
	authHandler := auth.NewHandler(authSvc)

	healthHandler := health.NewHandler(db, redis)

	srv := server.New(server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Health:          healthHandler,
		Logger:          logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authn := middleware.Authenticator(jwtManager)
	tiered := middleware.TieredRateLimiter(redis.Client, middleware.DefaultTiers)

	// Authenticated traffic gets per-account-type limits on top of the
	// global IP limiter. The tiered limiter runs inside the authenticator
	// so the token claims are already resolved.
	authenticator := func(next http.Handler) http.Handler {
		return authn(tiered(next))
	}

	router.Route("/api", func(r chi.Router) {
		// Public routes still resolve identity when a token is sent, so
		// browsing while logged in carries the caller through the logs.
		r.Use(middleware.OptionalAuth(jwtManager))

		authHandler.RegisterRoutes(r)

		userHandler.RegisterRoutes(r, authenticator)
		listingHandler.RegisterRoutes(r, authenticator)
		affiliateHandler.RegisterRoutes(r, authenticator)
		txnHandler.RegisterRoutes(r, authenticator)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	healthHandler.SetReady(true)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
