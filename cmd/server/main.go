package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coworking-ledger/internal/app"
	"github.com/nekogravitycat/coworking-ledger/internal/config"
	"github.com/nekogravitycat/coworking-ledger/internal/db"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	var pool *pgxpool.Pool
	if cfg.StoreDriver == config.StorePostgres {
		if cfg.MigrateOnStart {
			applied, err := db.Migrate(cfg.DBDSN)
			if err != nil {
				zl.Fatal("failed to migrate database", zap.Error(err))
			}
			zl.Info("database migrations checked", zap.Bool("applied", applied))
		}

		// Connect DB
		pool, err = db.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
		if err != nil {
			zl.Fatal("failed to connect to db", zap.Error(err))
		}
		defer pool.Close()
	} else {
		zl.Warn("using in-memory store; data is lost on exit")
	}

	container, err := app.NewContainer(app.Config{
		IsProduction:      cfg.IsProduction,
		ProdOrigins:       cfg.ProdOrigins,
		RateLimit:         cfg.RateLimit,
		RevenueWindowDays: cfg.RevenueWindowDays,
		TopDuesLimit:      cfg.TopDuesLimit,
		DBPool:            pool,
		Logger:            zl,
	})
	if err != nil {
		zl.Fatal("failed to build application", zap.Error(err))
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		zl.Info("server running", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	zl.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited gracefully")
}
