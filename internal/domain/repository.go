package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PortfolioRepository defines the interface for investor snapshot persistence
type PortfolioRepository interface {
	// UpsertInvestor creates the investor on first encounter and refreshes
	// its source URL on subsequent runs. Investors are never deleted
	UpsertInvestor(ctx context.Context, ref InvestorRef) (*Investor, error)

	// ListHoldings retrieves the investor's stored holdings with tickers joined
	ListHoldings(ctx context.Context, investorID uuid.UUID) ([]*Holding, error)

	// ListDeals retrieves the investor's stored deals of one type with
	// tickers joined
	ListDeals(ctx context.Context, investorID uuid.UUID, dealType DealType) ([]*Deal, error)

	// ApplyChanges applies the change set for one investor inside a single
	// database transaction. Stock rows are created idempotently as needed
	ApplyChanges(ctx context.Context, investorID uuid.UUID, changes *ChangeSet) error

	// HoldingsSnapshot returns all holdings joined with investor and stock
	// metadata, ordered by ticker then investor name
	HoldingsSnapshot(ctx context.Context) ([]*HoldingView, error)

	// DealsSnapshot returns all deals of one type joined with investor and
	// stock metadata, most recent first
	DealsSnapshot(ctx context.Context, dealType DealType) ([]*DealView, error)
}

// ScheduleRepository defines the interface for the singleton ingestion schedule
type ScheduleRepository interface {
	// Get retrieves the current schedule, seeding the default when no row
	// exists yet
	Get(ctx context.Context) (*Schedule, error)

	// Update atomically persists new schedule values
	Update(ctx context.Context, schedule Schedule) error
}

// HoldingView is a holdings row joined with investor and stock metadata,
// shaped for presentation
type HoldingView struct {
	Ticker         string
	Investor       string
	PercentHolding *decimal.Decimal
	Shares         *int64
	ReportedDate   *time.Time
}

// DealView is a deal row joined with investor and stock metadata, shaped
// for presentation
type DealView struct {
	Ticker   string
	Investor string
	DealDate time.Time
	Quantity *int64
	Price    *decimal.Decimal
}
