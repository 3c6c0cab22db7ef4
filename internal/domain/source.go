package domain

import "context"

// InvestorSource scrapes one investor's page and returns normalized
// in-memory records. Implementations return a *FetchError when the page is
// unreachable or its structure cannot be parsed; a category that is simply
// absent from the page yields an empty slice instead
type InvestorSource interface {
	Fetch(ctx context.Context) ([]HoldingRecord, []DealRecord, error)
}

// SourceFactory resolves the correct InvestorSource implementation for an
// investor's URL
type SourceFactory func(ref InvestorRef) (InvestorSource, error)
