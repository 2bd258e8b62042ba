package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/skysweep/skysweep/internal/api/handlers"
	"github.com/skysweep/skysweep/internal/api/router"
	"github.com/skysweep/skysweep/internal/config"
	"github.com/skysweep/skysweep/internal/inventory"
	"github.com/skysweep/skysweep/internal/pkg/logger"
	"github.com/skysweep/skysweep/internal/pkg/validator"
	"github.com/skysweep/skysweep/internal/repository/postgres"
	"github.com/skysweep/skysweep/internal/services"
	"github.com/skysweep/skysweep/internal/worker"
	"github.com/skysweep/skysweep/migrations"
)

// @title SkySweep API
// @version 1.0
// @description Cloud waste detection backend: detection rules, orphaned resources, and waste accrual.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	applied, err := postgres.RunMigrations(db, migrations.GetFS())
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if applied > 0 {
		log.Infof("Applied %d migration(s)", applied)
	}

	// Repositories and services
	ruleRepo := postgres.NewRuleRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	ruleService := services.NewRuleService(ruleRepo, log)
	orphanService := services.NewOrphanService(snapshotRepo, ruleRepo, log)

	// HTTP layer
	val := validator.New()
	h := &router.Handlers{
		Health: handlers.NewHealthHandler(db, log),
		Rule:   handlers.NewRuleHandler(ruleService, log, val),
		Orphan: handlers.NewOrphanHandler(orphanService, log),
	}
	mux := router.New(cfg, log, h)

	// Background sweeper
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sweeper *worker.WasteSweeper
	if cfg.Inventory.SweepEnabled {
		invClient := inventory.NewClient(inventory.Config{
			BaseURL: cfg.Inventory.URL,
			Timeout: cfg.Inventory.Timeout,
		})
		sweeper = worker.NewWasteSweeper(invClient, snapshotRepo, ruleRepo,
			cfg.Inventory.SweepSchedule, log)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatalf("Failed to start sweeper: %v", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	if sweeper != nil {
		sweeper.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Shutdown error")
	}

	log.Info("Server stopped")
}
