package ingestion

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// Reconciler is the slice of the reconciler service the runner depends on
type Reconciler interface {
	Reconcile(ctx context.Context, ref domain.InvestorRef, holdings []domain.HoldingRecord, deals []domain.DealRecord) (*domain.ReconcileResult, error)
}

// Runner orchestrates one ingestion run: for each configured investor it
// fetches the source page and reconciles the scraped records. A failing
// investor never aborts the run; its error is captured in the summary and
// the remaining investors proceed
type Runner struct {
	Investors  []domain.InvestorRef
	Sources    domain.SourceFactory
	Reconciler Reconciler
	Log        *logrus.Logger
}

// NewRunner creates a new ingestion Runner instance
func NewRunner(investors []domain.InvestorRef, sources domain.SourceFactory, reconciler Reconciler, log *logrus.Logger) *Runner {
	return &Runner{
		Investors:  investors,
		Sources:    sources,
		Reconciler: reconciler,
		Log:        log,
	}
}

// Run executes one full ingestion pass and returns the aggregated summary.
// The only way Run itself fails is context cancellation between investors;
// per-investor errors live in the summary
func (r *Runner) Run(ctx context.Context) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{StartedAt: time.Now().UTC()}
	r.Log.WithField("investors", len(r.Investors)).Info("Starting ingestion run")

	for _, inv := range r.Investors {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now().UTC()
			return summary, err
		}
		summary.Results = append(summary.Results, r.ingestOne(ctx, inv))
	}

	summary.FinishedAt = time.Now().UTC()
	failed := len(summary.Failed())
	r.Log.WithFields(logrus.Fields{
		"investors": len(summary.Results),
		"failed":    failed,
		"duration":  summary.FinishedAt.Sub(summary.StartedAt).String(),
	}).Info("Ingestion run finished")

	return summary, nil
}

func (r *Runner) ingestOne(ctx context.Context, ref domain.InvestorRef) domain.InvestorResult {
	log := r.Log.WithFields(logrus.Fields{"investor": ref.Name, "url": ref.URL})

	src, err := r.Sources(ref)
	if err != nil {
		log.WithError(err).Error("No source for investor URL")
		return domain.InvestorResult{Investor: ref, Status: domain.RunStatusFailed, Err: err}
	}

	holdings, deals, err := src.Fetch(ctx)
	if err != nil {
		// Fetch failures skip reconciliation entirely: the stored snapshot
		// for this investor stays untouched
		log.WithError(err).Error("Fetch failed, keeping stored snapshot")
		return domain.InvestorResult{Investor: ref, Status: domain.RunStatusFailed, Err: err}
	}
	log.WithFields(logrus.Fields{"holdings": len(holdings), "deals": len(deals)}).Debug("Fetched investor page")

	result, err := r.Reconciler.Reconcile(ctx, ref, holdings, deals)
	if err != nil {
		log.WithError(err).Error("Reconciliation failed")
		return domain.InvestorResult{Investor: ref, Status: domain.RunStatusFailed, Err: err}
	}

	return domain.InvestorResult{Investor: ref, Status: domain.RunStatusOK, Result: result}
}
