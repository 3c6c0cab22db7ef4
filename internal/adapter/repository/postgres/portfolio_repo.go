package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// portfolioRepository implements domain.PortfolioRepository
type portfolioRepository struct {
	db *DB
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *DB) domain.PortfolioRepository {
	return &portfolioRepository{db: db}
}

// dealTable maps a deal type to its table. Keeping the switch exhaustive
// here is what makes the fmt.Sprintf queries below safe
func dealTable(dealType domain.DealType) (string, error) {
	switch dealType {
	case domain.DealTypeBulk:
		return "bulk_deals", nil
	case domain.DealTypeBlock:
		return "block_deals", nil
	}
	return "", fmt.Errorf("unknown deal type %q", dealType)
}

// UpsertInvestor creates the investor on first encounter and refreshes its
// name on subsequent runs. Investors are unique by source URL
func (r *portfolioRepository) UpsertInvestor(ctx context.Context, ref domain.InvestorRef) (*domain.Investor, error) {
	query := `
		INSERT INTO investors (id, name, source_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (source_url) DO UPDATE
		SET name = EXCLUDED.name, updated_at = now()
		RETURNING id, name, source_url, created_at, updated_at
	`

	var investor domain.Investor
	err := r.db.QueryRowContext(ctx, query, uuid.New(), ref.Name, ref.URL).Scan(
		&investor.ID,
		&investor.Name,
		&investor.SourceURL,
		&investor.CreatedAt,
		&investor.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert investor %s: %w", ref.Name, err)
	}

	return &investor, nil
}

// ListHoldings retrieves the investor's stored holdings with tickers joined
func (r *portfolioRepository) ListHoldings(ctx context.Context, investorID uuid.UUID) ([]*domain.Holding, error) {
	query := `
		SELECT h.id, h.investor_id, h.stock_id, s.ticker,
		       h.percent_holding, h.shares, h.reported_date,
		       h.created_at, h.updated_at
		FROM holdings h
		JOIN stocks s ON h.stock_id = s.id
		WHERE h.investor_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	holdings := []*domain.Holding{}
	for rows.Next() {
		var h domain.Holding
		var percent sql.NullString
		var shares sql.NullInt64
		var reported sql.NullTime

		err := rows.Scan(&h.ID, &h.InvestorID, &h.StockID, &h.Ticker,
			&percent, &shares, &reported, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}

		h.PercentHolding, err = nullDecimal(percent)
		if err != nil {
			return nil, fmt.Errorf("failed to parse percent_holding: %w", err)
		}
		if shares.Valid {
			v := shares.Int64
			h.Shares = &v
		}
		if reported.Valid {
			t := reported.Time
			h.ReportedDate = &t
		}

		holdings = append(holdings, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// ListDeals retrieves the investor's stored deals of one type with tickers joined
func (r *portfolioRepository) ListDeals(ctx context.Context, investorID uuid.UUID, dealType domain.DealType) ([]*domain.Deal, error) {
	table, err := dealTable(dealType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT d.id, d.investor_id, d.stock_id, s.ticker,
		       d.deal_date, d.quantity, d.price,
		       d.created_at, d.updated_at
		FROM %s d
		JOIN stocks s ON d.stock_id = s.id
		WHERE d.investor_id = $1
	`, table)

	rows, err := r.db.QueryContext(ctx, query, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	deals := []*domain.Deal{}
	for rows.Next() {
		var d domain.Deal
		d.Type = dealType
		var quantity sql.NullInt64
		var price sql.NullString

		err := rows.Scan(&d.ID, &d.InvestorID, &d.StockID, &d.Ticker,
			&d.DealDate, &quantity, &price, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}

		if quantity.Valid {
			v := quantity.Int64
			d.Quantity = &v
		}
		d.Price, err = nullDecimal(price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}

		deals = append(deals, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}

	return deals, nil
}

// ApplyChanges applies one investor's change set inside a single database
// transaction: readers never see a half-applied investor update
func (r *portfolioRepository) ApplyChanges(ctx context.Context, investorID uuid.UUID, changes *domain.ChangeSet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsertHoldingQuery := `
		INSERT INTO holdings (id, investor_id, stock_id, percent_holding, shares, reported_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (investor_id, stock_id) DO UPDATE
		SET percent_holding = EXCLUDED.percent_holding,
		    shares = EXCLUDED.shares,
		    reported_date = EXCLUDED.reported_date,
		    updated_at = now()
	`

	for _, record := range append(changes.InsertHoldings, changes.UpdateHoldings...) {
		stockID, err := getOrCreateStock(ctx, tx, record.Ticker)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, upsertHoldingQuery,
			uuid.New(), investorID, stockID,
			decimalArg(record.PercentHolding), record.Shares, record.ReportedDate,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert holding %s: %w", record.Ticker, err)
		}
	}

	if len(changes.DeleteHoldingIDs) > 0 {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM holdings WHERE investor_id = $1 AND id = ANY($2)`,
			investorID, pq.Array(uuidStrings(changes.DeleteHoldingIDs)),
		)
		if err != nil {
			return fmt.Errorf("failed to delete holdings: %w", err)
		}
	}

	for _, record := range append(changes.InsertDeals, changes.UpdateDeals...) {
		table, err := dealTable(record.Type)
		if err != nil {
			return err
		}
		stockID, err := getOrCreateStock(ctx, tx, record.Ticker)
		if err != nil {
			return err
		}
		query := fmt.Sprintf(`
			INSERT INTO %s (id, investor_id, stock_id, deal_date, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (investor_id, stock_id, deal_date) DO UPDATE
			SET quantity = EXCLUDED.quantity,
			    price = EXCLUDED.price,
			    updated_at = now()
		`, table)
		_, err = tx.ExecContext(ctx, query,
			uuid.New(), investorID, stockID,
			record.DealDate, record.Quantity, decimalArg(record.Price),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert %s deal %s: %w", record.Type, record.Ticker, err)
		}
	}

	if len(changes.DeleteDealIDs) > 0 {
		// Deal ids are unique UUIDs, so issuing the delete against both
		// tables removes exactly the intended rows
		ids := pq.Array(uuidStrings(changes.DeleteDealIDs))
		for _, table := range []string{"bulk_deals", "block_deals"} {
			query := fmt.Sprintf(`DELETE FROM %s WHERE investor_id = $1 AND id = ANY($2)`, table)
			if _, err := tx.ExecContext(ctx, query, investorID, ids); err != nil {
				return fmt.Errorf("failed to delete %s: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// HoldingsSnapshot returns all holdings joined with investor and stock
// metadata, ordered by ticker then investor name
func (r *portfolioRepository) HoldingsSnapshot(ctx context.Context) ([]*domain.HoldingView, error) {
	query := `
		SELECT s.ticker, i.name, h.percent_holding, h.shares, h.reported_date
		FROM holdings h
		JOIN investors i ON h.investor_id = i.id
		JOIN stocks s ON h.stock_id = s.id
		ORDER BY s.ticker, i.name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings snapshot: %w", err)
	}
	defer rows.Close()

	views := []*domain.HoldingView{}
	for rows.Next() {
		var v domain.HoldingView
		var percent sql.NullString
		var shares sql.NullInt64
		var reported sql.NullTime

		if err := rows.Scan(&v.Ticker, &v.Investor, &percent, &shares, &reported); err != nil {
			return nil, fmt.Errorf("failed to scan holdings snapshot row: %w", err)
		}
		v.PercentHolding, err = nullDecimal(percent)
		if err != nil {
			return nil, fmt.Errorf("failed to parse percent_holding: %w", err)
		}
		if shares.Valid {
			n := shares.Int64
			v.Shares = &n
		}
		if reported.Valid {
			t := reported.Time
			v.ReportedDate = &t
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings snapshot: %w", err)
	}

	return views, nil
}

// DealsSnapshot returns all deals of one type joined with investor and
// stock metadata, most recent first
func (r *portfolioRepository) DealsSnapshot(ctx context.Context, dealType domain.DealType) ([]*domain.DealView, error) {
	table, err := dealTable(dealType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT s.ticker, i.name, d.deal_date, d.quantity, d.price
		FROM %s d
		JOIN investors i ON d.investor_id = i.id
		JOIN stocks s ON d.stock_id = s.id
		ORDER BY d.deal_date DESC, s.ticker, i.name
	`, table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", table, err)
	}
	defer rows.Close()

	views := []*domain.DealView{}
	for rows.Next() {
		var v domain.DealView
		var quantity sql.NullInt64
		var price sql.NullString

		if err := rows.Scan(&v.Ticker, &v.Investor, &v.DealDate, &quantity, &price); err != nil {
			return nil, fmt.Errorf("failed to scan %s snapshot row: %w", table, err)
		}
		if quantity.Valid {
			n := quantity.Int64
			v.Quantity = &n
		}
		v.Price, err = nullDecimal(price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s snapshot: %w", table, err)
	}

	return views, nil
}

// getOrCreateStock resolves a ticker to its stock id, creating the row when
// missing. The ON CONFLICT DO NOTHING + select pair is idempotent, so
// parallel reconciliations cannot race a duplicate ticker into existence
func getOrCreateStock(ctx context.Context, tx *sql.Tx, ticker string) (uuid.UUID, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO stocks (id, ticker) VALUES ($1, $2) ON CONFLICT (ticker) DO NOTHING`,
		uuid.New(), ticker,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create stock %s: %w", ticker, err)
	}

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM stocks WHERE ticker = $1`, ticker).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve stock %s: %w", ticker, err)
	}
	return id, nil
}

// nullDecimal parses a nullable NUMERIC column scanned as text
func nullDecimal(v sql.NullString) (*decimal.Decimal, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// decimalArg renders an optional decimal as a driver-friendly value
func decimalArg(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
