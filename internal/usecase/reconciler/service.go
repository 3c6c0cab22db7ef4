package reconciler

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// Service reconciles one investor's freshly scraped records against the
// stored snapshot: new keys are inserted, changed values updated in place,
// and stored keys absent from the scrape deleted. All mutations for one
// investor are applied in a single database transaction
type Service struct {
	Repo domain.PortfolioRepository
	Log  *logrus.Logger
}

// NewService creates a new reconciler Service instance
func NewService(repo domain.PortfolioRepository, log *logrus.Logger) *Service {
	return &Service{Repo: repo, Log: log}
}

// Reconcile aligns the stored snapshot for one investor with the scraped
// holdings and deals. An empty fetched category is a legitimate full-exit
// signal and deletes every stored row in that category; a fetch failure
// must be handled by the caller and never reach this method.
// On failure the investor's transaction is rolled back and a
// *domain.ReconcileError is returned
func (s *Service) Reconcile(ctx context.Context, ref domain.InvestorRef, holdings []domain.HoldingRecord, deals []domain.DealRecord) (*domain.ReconcileResult, error) {
	investor, err := s.Repo.UpsertInvestor(ctx, ref)
	if err != nil {
		return nil, &domain.ReconcileError{Investor: ref.Name, Err: err}
	}

	storedHoldings, err := s.Repo.ListHoldings(ctx, investor.ID)
	if err != nil {
		return nil, &domain.ReconcileError{Investor: ref.Name, Err: fmt.Errorf("failed to load stored holdings: %w", err)}
	}
	storedBulk, err := s.Repo.ListDeals(ctx, investor.ID, domain.DealTypeBulk)
	if err != nil {
		return nil, &domain.ReconcileError{Investor: ref.Name, Err: fmt.Errorf("failed to load stored bulk deals: %w", err)}
	}
	storedBlock, err := s.Repo.ListDeals(ctx, investor.ID, domain.DealTypeBlock)
	if err != nil {
		return nil, &domain.ReconcileError{Investor: ref.Name, Err: fmt.Errorf("failed to load stored block deals: %w", err)}
	}

	bulk, block := splitBuyDeals(deals)

	hDiff := diffHoldings(storedHoldings, holdings)
	bulkDiff := diffDeals(storedBulk, bulk)
	blockDiff := diffDeals(storedBlock, block)

	changes := &domain.ChangeSet{
		InsertHoldings:   hDiff.inserts,
		UpdateHoldings:   hDiff.updates,
		DeleteHoldingIDs: hDiff.deletes,
		InsertDeals:      append(bulkDiff.inserts, blockDiff.inserts...),
		UpdateDeals:      append(bulkDiff.updates, blockDiff.updates...),
		DeleteDealIDs:    append(bulkDiff.deletes, blockDiff.deletes...),
	}

	if !changes.Empty() {
		if err := s.Repo.ApplyChanges(ctx, investor.ID, changes); err != nil {
			return nil, &domain.ReconcileError{Investor: ref.Name, Err: err}
		}
	}

	result := &domain.ReconcileResult{
		Holdings:   hDiff.result(),
		BulkDeals:  bulkDiff.result(),
		BlockDeals: blockDiff.result(),
	}

	s.Log.WithFields(logrus.Fields{
		"investor":          ref.Name,
		"holdings_inserted": result.Holdings.Inserted,
		"holdings_updated":  result.Holdings.Updated,
		"holdings_deleted":  result.Holdings.Deleted,
		"deals_inserted":    result.BulkDeals.Inserted + result.BlockDeals.Inserted,
		"deals_updated":     result.BulkDeals.Updated + result.BlockDeals.Updated,
		"deals_deleted":     result.BulkDeals.Deleted + result.BlockDeals.Deleted,
	}).Info("Reconciled investor snapshot")

	return result, nil
}

// splitBuyDeals keeps only buy-side disclosures and partitions them by
// deal category
func splitBuyDeals(deals []domain.DealRecord) (bulk, block []domain.DealRecord) {
	for _, d := range deals {
		if d.Side != domain.DealSideBuy {
			continue
		}
		switch d.Type {
		case domain.DealTypeBulk:
			bulk = append(bulk, d)
		case domain.DealTypeBlock:
			block = append(block, d)
		}
	}
	return bulk, block
}
