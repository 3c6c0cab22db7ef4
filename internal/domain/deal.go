package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealType distinguishes the two disclosure categories. Each type is
// persisted in its own table (bulk_deals / block_deals)
type DealType string

const (
	DealTypeBulk  DealType = "bulk"
	DealTypeBlock DealType = "block"
)

// DealSide is the reported transaction direction. Only buy-side deals are
// reconciled into the snapshot
type DealSide string

const (
	DealSideBuy  DealSide = "buy"
	DealSideSell DealSide = "sell"
)

// Deal represents a persisted bulk or block deal disclosure.
// Invariant: unique on (investor, stock, deal date) within a deal type
type Deal struct {
	ID         uuid.UUID
	InvestorID uuid.UUID
	StockID    uuid.UUID
	Ticker     string // joined from the stocks table for diffing
	Type       DealType
	DealDate   time.Time
	Quantity   *int64
	Price      *decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DealRecord is a freshly scraped deal that has not been persisted yet
type DealRecord struct {
	Ticker   string
	Type     DealType
	Side     DealSide
	DealDate time.Time
	Quantity *int64
	Price    *decimal.Decimal
}

// DealKey is the natural key of a deal within one investor and deal type
type DealKey struct {
	Ticker string
	Date   string // formatted as 2006-01-02
}

// Key returns the natural key of the stored deal
func (d *Deal) Key() DealKey {
	return DealKey{Ticker: d.Ticker, Date: d.DealDate.Format(time.DateOnly)}
}

// Key returns the natural key of the scraped deal
func (r DealRecord) Key() DealKey {
	return DealKey{Ticker: r.Ticker, Date: r.DealDate.Format(time.DateOnly)}
}

// Matches reports whether the stored attributes equal the scraped record.
// A key collision with different price/quantity is treated as an update
// in place, not an immutability violation
func (d *Deal) Matches(r DealRecord) bool {
	return int64PtrEqual(d.Quantity, r.Quantity) &&
		decimalPtrEqual(d.Price, r.Price)
}
