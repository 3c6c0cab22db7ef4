package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/simaogato/holdingswatch-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/holdingswatch-backend/internal/adapter/source"
	"github.com/simaogato/holdingswatch-backend/internal/adapter/web"
	"github.com/simaogato/holdingswatch-backend/internal/config"
	"github.com/simaogato/holdingswatch-backend/internal/logging"
	"github.com/simaogato/holdingswatch-backend/internal/usecase/ingestion"
	"github.com/simaogato/holdingswatch-backend/internal/usecase/reconciler"
	"github.com/simaogato/holdingswatch-backend/internal/usecase/schedule"
	"github.com/simaogato/holdingswatch-backend/internal/usecase/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg.LogLevel)

	// 2. Database and schema
	db, err := postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// 3. Repositories
	portfolioRepo := postgres.NewPortfolioRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)

	// 4. Services (Use Cases)
	reconcilerService := reconciler.NewService(portfolioRepo, log)
	runner := ingestion.NewRunner(cfg.Investors, source.Factory(source.NewHTTPClient()), reconcilerService, log)
	scheduleService := schedule.NewService(scheduleRepo, log)

	trigger := scheduler.New(scheduleRepo, runner, log)
	scheduleService.SetRearmer(trigger)
	if err := trigger.Start(ctx); err != nil {
		log.Fatalf("Failed to start ingestion trigger: %v", err)
	}
	defer trigger.Stop()

	// 5. HTTP server (dashboard + schedule form)
	webServer := web.NewServer(portfolioRepo, scheduleService, trigger, "templates/*", log)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: webServer.Handler(),
	}

	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP server: %v", err)
		}
	}()

	// Graceful shutdown
	waitForShutdown(httpServer, log)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(httpServer *http.Server, log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Infof("Received signal: %v. Shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("Failed to shut down HTTP server: %v", err)
	}
	log.Info("HTTP server stopped")
}
