package reconciler

import (
	"github.com/google/uuid"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// holdingDiff is the pure diff of one investor's holdings: stored rows keyed
// by ticker against freshly scraped records
type holdingDiff struct {
	inserts []domain.HoldingRecord
	updates []domain.HoldingRecord
	deletes []uuid.UUID
}

func (d holdingDiff) result() domain.CategoryResult {
	return domain.CategoryResult{Inserted: len(d.inserts), Updated: len(d.updates), Deleted: len(d.deletes)}
}

// diffHoldings computes insert/update/delete sets. A scraped ticker that is
// not stored is an insert; a stored ticker with differing attributes is an
// update; a stored ticker absent from the scrape is a delete (exit
// detection). Identical rows produce no mutation at all
func diffHoldings(stored []*domain.Holding, fetched []domain.HoldingRecord) holdingDiff {
	storedByTicker := make(map[string]*domain.Holding, len(stored))
	for _, h := range stored {
		storedByTicker[h.Ticker] = h
	}

	var diff holdingDiff
	seen := make(map[string]struct{}, len(fetched))
	for _, record := range fetched {
		if _, dup := seen[record.Ticker]; dup {
			// last row wins when a page repeats a ticker
			continue
		}
		seen[record.Ticker] = struct{}{}

		existing, ok := storedByTicker[record.Ticker]
		if !ok {
			diff.inserts = append(diff.inserts, record)
			continue
		}
		if !existing.Matches(record) {
			diff.updates = append(diff.updates, record)
		}
	}

	for _, h := range stored {
		if _, ok := seen[h.Ticker]; !ok {
			diff.deletes = append(diff.deletes, h.ID)
		}
	}
	return diff
}

// dealDiff mirrors holdingDiff for one deal category, keyed by
// (ticker, deal date)
type dealDiff struct {
	inserts []domain.DealRecord
	updates []domain.DealRecord
	deletes []uuid.UUID
}

func (d dealDiff) result() domain.CategoryResult {
	return domain.CategoryResult{Inserted: len(d.inserts), Updated: len(d.updates), Deleted: len(d.deletes)}
}

func diffDeals(stored []*domain.Deal, fetched []domain.DealRecord) dealDiff {
	storedByKey := make(map[domain.DealKey]*domain.Deal, len(stored))
	for _, d := range stored {
		storedByKey[d.Key()] = d
	}

	var diff dealDiff
	seen := make(map[domain.DealKey]struct{}, len(fetched))
	for _, record := range fetched {
		key := record.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		existing, ok := storedByKey[key]
		if !ok {
			diff.inserts = append(diff.inserts, record)
			continue
		}
		if !existing.Matches(record) {
			diff.updates = append(diff.updates, record)
		}
	}

	for _, d := range stored {
		if _, ok := seen[d.Key()]; !ok {
			diff.deletes = append(diff.deletes, d.ID)
		}
	}
	return diff
}
