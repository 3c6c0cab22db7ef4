package postgres

import (
	"context"
	"fmt"
)

// schemaStatements creates the snapshot tables when they do not exist yet.
// Statement order matters: holdings and deals reference investors and stocks
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS investors (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		source_url TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS stocks (
		id UUID PRIMARY KEY,
		ticker TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS holdings (
		id UUID PRIMARY KEY,
		investor_id UUID NOT NULL REFERENCES investors(id) ON DELETE CASCADE,
		stock_id UUID NOT NULL REFERENCES stocks(id) ON DELETE CASCADE,
		percent_holding NUMERIC,
		shares BIGINT,
		reported_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (investor_id, stock_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bulk_deals (
		id UUID PRIMARY KEY,
		investor_id UUID NOT NULL REFERENCES investors(id) ON DELETE CASCADE,
		stock_id UUID NOT NULL REFERENCES stocks(id) ON DELETE CASCADE,
		deal_date DATE NOT NULL,
		quantity BIGINT,
		price NUMERIC,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (investor_id, stock_id, deal_date)
	)`,
	`CREATE TABLE IF NOT EXISTS block_deals (
		id UUID PRIMARY KEY,
		investor_id UUID NOT NULL REFERENCES investors(id) ON DELETE CASCADE,
		stock_id UUID NOT NULL REFERENCES stocks(id) ON DELETE CASCADE,
		deal_date DATE NOT NULL,
		quantity BIGINT,
		price NUMERIC,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (investor_id, stock_id, deal_date)
	)`,
	`CREATE TABLE IF NOT EXISTS ingest_schedule (
		id INT PRIMARY KEY DEFAULT 1,
		hour INT NOT NULL,
		minute INT NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates all tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
