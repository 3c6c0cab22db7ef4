package domain

import "github.com/google/uuid"

// ChangeSet is the full set of mutations that bring one investor's stored
// snapshot in line with a fresh scrape. It is applied atomically: either
// every change commits or none does
type ChangeSet struct {
	InsertHoldings   []HoldingRecord
	UpdateHoldings   []HoldingRecord
	DeleteHoldingIDs []uuid.UUID

	InsertDeals   []DealRecord
	UpdateDeals   []DealRecord
	DeleteDealIDs []uuid.UUID
}

// Empty reports whether the change set contains no mutations
func (c *ChangeSet) Empty() bool {
	return len(c.InsertHoldings) == 0 && len(c.UpdateHoldings) == 0 && len(c.DeleteHoldingIDs) == 0 &&
		len(c.InsertDeals) == 0 && len(c.UpdateDeals) == 0 && len(c.DeleteDealIDs) == 0
}

// CategoryResult counts the mutations applied to one category
type CategoryResult struct {
	Inserted int
	Updated  int
	Deleted  int
}

// Zero reports whether nothing changed in the category
func (c CategoryResult) Zero() bool {
	return c.Inserted == 0 && c.Updated == 0 && c.Deleted == 0
}

// ReconcileResult summarizes one investor's reconciliation.
// Running reconcile twice with identical fetched data is idempotent: the
// second result has all-zero categories
type ReconcileResult struct {
	Holdings   CategoryResult
	BulkDeals  CategoryResult
	BlockDeals CategoryResult
}

// Zero reports whether the reconciliation was a complete no-op
func (r *ReconcileResult) Zero() bool {
	return r.Holdings.Zero() && r.BulkDeals.Zero() && r.BlockDeals.Zero()
}
