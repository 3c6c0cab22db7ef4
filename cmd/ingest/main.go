package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/simaogato/holdingswatch-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/holdingswatch-backend/internal/adapter/source"
	"github.com/simaogato/holdingswatch-backend/internal/config"
	"github.com/simaogato/holdingswatch-backend/internal/domain"
	"github.com/simaogato/holdingswatch-backend/internal/logging"
	"github.com/simaogato/holdingswatch-backend/internal/usecase/ingestion"
	"github.com/simaogato/holdingswatch-backend/internal/usecase/reconciler"
)

// One-shot ingestion run for cron jobs and manual backfills. Exits 1 when
// any investor fails
func main() {
	verbose := flag.Bool("verbose", false, "log at debug level")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	log := logging.New(cfg.LogLevel)

	db, err := postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	portfolioRepo := postgres.NewPortfolioRepository(db)
	reconcilerService := reconciler.NewService(portfolioRepo, log)
	runner := ingestion.NewRunner(cfg.Investors, source.Factory(source.NewHTTPClient()), reconcilerService, log)

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("Ingestion run aborted: %v", err)
	}

	for _, result := range summary.Results {
		entry := log.WithFields(logrus.Fields{
			"investor": result.Investor.Name,
			"status":   result.Status,
		})
		if result.Status == domain.RunStatusFailed {
			entry.WithError(result.Err).Error("Investor failed")
			continue
		}
		entry.WithFields(logrus.Fields{
			"holdings":    result.Result.Holdings,
			"bulk_deals":  result.Result.BulkDeals,
			"block_deals": result.Result.BlockDeals,
		}).Info("Investor reconciled")
	}

	failed := summary.Failed()
	log.WithFields(logrus.Fields{
		"investors": len(summary.Results),
		"failed":    len(failed),
		"duration":  summary.FinishedAt.Sub(summary.StartedAt).String(),
	}).Info("Ingestion run finished")

	if len(failed) > 0 {
		os.Exit(1)
	}
}
