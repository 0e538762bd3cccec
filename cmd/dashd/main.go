package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/abbasi303/Marketting-dashboard/internal/config"
	"github.com/abbasi303/Marketting-dashboard/internal/httpserver"
	"github.com/abbasi303/Marketting-dashboard/internal/metrics"
	"github.com/abbasi303/Marketting-dashboard/internal/middleware"
	"github.com/abbasi303/Marketting-dashboard/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	defer logger.Sync()

	logger.Info("starting marketing dashboard",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
	)

	m := metrics.NewMetrics("dashboard")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Pick the report cache backend: Redis when configured and reachable,
	// the file cache otherwise.
	var cache storage.ReportCache
	backend := "file"
	if cfg.Redis.Addr != "" {
		redisCache, err := storage.NewRedisCache(ctx, cfg.Redis, cfg.Cache.TTL, logger)
		if err != nil {
			logger.Warn("Redis not available, falling back to file cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			cache = redisCache
			backend = "redis"
		}
	}
	if cache == nil {
		fileCache, err := storage.NewFileCache(cfg.Cache.Dir, cfg.Cache.TTL, logger)
		if err != nil {
			logger.Fatal("failed to initialize file cache", zap.Error(err))
		}
		cache = fileCache
	}

	rateLimit := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger)

	handler := httpserver.NewServer(&httpserver.Dependencies{
		Cache:        cache,
		CacheBackend: backend,
		Costs:        storage.NewCostTable(),
		Config:       cfg,
		Logger:       logger,
		Metrics:      m,
		RateLimit:    rateLimit,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	// The per-IP limiter map only grows; flush it hourly.
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				rateLimit.CleanupIPLimiters()
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server forced to shutdown", zap.Error(err))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func setupLogger(cfg *config.Config) *zap.Logger {
	var zapCfg zap.Config

	if cfg.IsDevelopment() || cfg.Log.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Log.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}

	return logger
}
