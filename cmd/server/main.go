package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "NeighborWatch/internal/handler"
	"NeighborWatch/internal/models"
	"NeighborWatch/pkg/config"
	"NeighborWatch/pkg/logger"
	"NeighborWatch/pkg/metrics"
	"NeighborWatch/pkg/middleware"
	stores "NeighborWatch/pkg/storage"
	"NeighborWatch/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("neighborwatch: %v", err)
	}
}

func run() error {
	// 1. config and logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lg, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	logger.Init(lg)
	defer logger.Sync()

	// 2. database
	m := metrics.NewMetrics()
	db, err := util.OpenDatabase(cfg.DB, &gorm.Config{Logger: logger.NewGormLogger(lg)})
	if err != nil {
		return err
	}
	if err := db.Use(metrics.NewGormPlugin(m)); err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			return err
		}
		lg.Info("schema migrated", zap.String("driver", cfg.DB.Driver))
	}

	// 3. uploads
	store, err := stores.New(cfg.Storage)
	if err != nil {
		return err
	}

	// 4. rate limiting
	var rl *middleware.RateLimiter
	if cfg.RateLimit != "" {
		lcfg := middleware.RateLimiterConfig{
			Rate:       cfg.RateLimit,
			SkipPaths:  []string{"/healthz", cfg.MetricsPath},
			AddHeaders: true,
		}
		var backend limiter.Store
		if cfg.RateLimitRedis != "" {
			if backend, err = middleware.NewRedisStore(context.Background(), cfg.RateLimitRedis); err != nil {
				return err
			}
		}
		if rl, err = middleware.NewRateLimiter(lcfg, backend); err != nil {
			return err
		}
	}

	// 5. http
	gin.SetMode(cfg.Mode)
	h := handlers.NewHandlers(handlers.Deps{
		Config:  cfg,
		Conns:   models.NewProvider(db, cfg.DB.QueryTimeout),
		Store:   store,
		Metrics: m,
		Logger:  lg,
		Limiter: rl,
	})
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           h.NewEngine(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down", zap.Duration("grace", cfg.ShutdownGrace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
