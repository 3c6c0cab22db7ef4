package domain

import (
	"time"

	"github.com/google/uuid"
)

// Investor represents a tracked entity whose public disclosures
// (holdings, bulk deals, block deals) are scraped
type Investor struct {
	ID        uuid.UUID
	Name      string
	SourceURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvestorRef identifies an investor before it has a database row:
// the configured display name plus the source page URL it is scraped from.
// Investors are unique by URL
type InvestorRef struct {
	Name string
	URL  string
}

// Stock is a shared, append-only reference entity keyed by ticker.
// Stocks are created lazily when first referenced and never deleted,
// even when no holding or deal references them anymore
type Stock struct {
	ID     uuid.UUID
	Ticker string
}
