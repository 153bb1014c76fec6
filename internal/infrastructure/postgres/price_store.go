package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tcgvault/backend/internal/domain"
)

// PriceStore persists feed price points. The current table holds one row
// per (product, sub-type); the history table holds one row per (product,
// sub-type, hour).
type PriceStore struct {
	pool *pgxpool.Pool
}

// NewPriceStore creates a store on the given database.
func NewPriceStore(db *DB) *PriceStore {
	return &PriceStore{pool: db.Pool()}
}

// UpsertProductPrices replaces the current price rows for the given
// products.
func (s *PriceStore) UpsertProductPrices(ctx context.Context, prices []domain.ProductPrice) error {
	if len(prices) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(
			`INSERT INTO product_prices (product_id, sub_type_name, low_price, mid_price, high_price, market_price, direct_low_price, fetched_at, raw)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (product_id, sub_type_name) DO UPDATE SET
			   low_price = $3, mid_price = $4, high_price = $5, market_price = $6,
			   direct_low_price = $7, fetched_at = $8, raw = $9`,
			p.ProductID, p.SubTypeName, p.LowPrice, p.MidPrice, p.HighPrice,
			p.MarketPrice, p.DirectLowPrice, p.FetchedAt, p.Raw,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert product prices: %w", err)
	}
	return nil
}

// InsertProductPriceHistory appends price rows for the batch's hour,
// deleting any rows already written for that hour so a re-run within the
// same hour replaces rather than duplicates.
func (s *PriceStore) InsertProductPriceHistory(ctx context.Context, prices []domain.ProductPrice) error {
	if len(prices) == 0 {
		return nil
	}

	for _, hour := range distinctHours(prices) {
		if _, err := s.pool.Exec(ctx,
			`DELETE FROM product_prices_history WHERE fetched_at = $1`, hour,
		); err != nil {
			return fmt.Errorf("failed to clear price history for hour %s: %w", hour, err)
		}
	}

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(
			`INSERT INTO product_prices_history (product_id, sub_type_name, low_price, mid_price, high_price, market_price, direct_low_price, fetched_at, raw)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ProductID, p.SubTypeName, p.LowPrice, p.MidPrice, p.HighPrice,
			p.MarketPrice, p.DirectLowPrice, p.FetchedAt, p.Raw,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert product price history: %w", err)
	}
	return nil
}

// CurrentPrices returns the current price rows for the given products.
func (s *PriceStore) CurrentPrices(ctx context.Context, productIDs []int64) ([]domain.ProductPrice, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT product_id, COALESCE(sub_type_name, ''), low_price, mid_price, high_price, market_price, direct_low_price, fetched_at
		 FROM product_prices WHERE product_id = ANY($1) ORDER BY product_id, sub_type_name`,
		productIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query current prices: %w", err)
	}
	defer rows.Close()

	return scanPrices(rows)
}

// PriceHistory returns the history rows for one product since the given
// time, oldest first.
func (s *PriceStore) PriceHistory(ctx context.Context, productID int64, since time.Time) ([]domain.ProductPrice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product_id, COALESCE(sub_type_name, ''), low_price, mid_price, high_price, market_price, direct_low_price, fetched_at
		 FROM product_prices_history WHERE product_id = $1 AND fetched_at >= $2
		 ORDER BY fetched_at`,
		productID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	return scanPrices(rows)
}

func scanPrices(rows pgx.Rows) ([]domain.ProductPrice, error) {
	var prices []domain.ProductPrice
	for rows.Next() {
		var p domain.ProductPrice
		if err := rows.Scan(&p.ProductID, &p.SubTypeName, &p.LowPrice, &p.MidPrice,
			&p.HighPrice, &p.MarketPrice, &p.DirectLowPrice, &p.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func distinctHours(prices []domain.ProductPrice) []time.Time {
	seen := make(map[time.Time]struct{})
	var hours []time.Time
	for _, p := range prices {
		hour := domain.TruncateToHour(p.FetchedAt)
		if _, ok := seen[hour]; !ok {
			seen[hour] = struct{}{}
			hours = append(hours, hour)
		}
	}
	return hours
}
