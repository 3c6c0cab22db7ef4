package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding represents an investor's currently reported position in a stock.
// Invariant: at most one holding per (investor, stock) pair
type Holding struct {
	ID             uuid.UUID
	InvestorID     uuid.UUID
	StockID        uuid.UUID
	Ticker         string // joined from the stocks table for diffing
	PercentHolding *decimal.Decimal
	Shares         *int64
	ReportedDate   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HoldingRecord is a freshly scraped holding that has not been persisted yet
type HoldingRecord struct {
	Ticker         string
	PercentHolding *decimal.Decimal
	Shares         *int64
	ReportedDate   *time.Time
}

// Matches reports whether the stored attributes equal the scraped record,
// meaning reconciliation can skip the row entirely
func (h *Holding) Matches(r HoldingRecord) bool {
	return decimalPtrEqual(h.PercentHolding, r.PercentHolding) &&
		int64PtrEqual(h.Shares, r.Shares) &&
		datePtrEqual(h.ReportedDate, r.ReportedDate)
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// datePtrEqual compares at day granularity; scraped dates carry no time part
func datePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
