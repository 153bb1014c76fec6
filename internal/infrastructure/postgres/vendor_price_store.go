package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tcgvault/backend/internal/domain"
)

// VendorPriceStore persists reconciled vendor listings. Current rows are
// keyed (vendor, title); history rows are keyed (vendor, title, hour).
type VendorPriceStore struct {
	pool *pgxpool.Pool
}

// NewVendorPriceStore creates a store on the given database.
func NewVendorPriceStore(db *DB) *VendorPriceStore {
	return &VendorPriceStore{pool: db.Pool()}
}

const vendorListingColumns = `vendor, title, price_single_text, price_single_value,
	price_min_text, price_min_value, price_max_text, price_max_value,
	price_usd, currency, source_url, quickshop_url, fetched_at, raw,
	meta_number, meta_group, meta_abbreviation, meta_group_name, meta_rarity_hint, product_id`

func vendorListingArgs(l domain.VendorListing) []any {
	return []any{
		l.Vendor, l.Title, l.PriceSingleText, l.PriceSingleValue,
		l.PriceMinText, l.PriceMinValue, l.PriceMaxText, l.PriceMaxValue,
		l.PriceUSD, l.Currency, l.SourceURL, l.QuickshopURL, l.FetchedAt, l.Raw,
		l.Metadata.Number, l.Metadata.GroupLabel, l.Metadata.Abbreviation,
		l.Metadata.GroupName, l.Metadata.RarityHint, l.ProductID,
	}
}

// UpsertVendorPrices replaces the current listing rows by (vendor, title).
func (s *VendorPriceStore) UpsertVendorPrices(ctx context.Context, listings []domain.VendorListing) error {
	if len(listings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(
			`INSERT INTO vendor_prices (`+vendorListingColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			 ON CONFLICT (vendor, title) DO UPDATE SET
			   price_single_text = $3, price_single_value = $4,
			   price_min_text = $5, price_min_value = $6,
			   price_max_text = $7, price_max_value = $8,
			   price_usd = $9, currency = $10, source_url = $11, quickshop_url = $12,
			   fetched_at = $13, raw = $14, meta_number = $15, meta_group = $16,
			   meta_abbreviation = $17, meta_group_name = $18, meta_rarity_hint = $19,
			   product_id = $20`,
			vendorListingArgs(l)...,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert vendor prices: %w", err)
	}
	return nil
}

// InsertVendorPriceHistory appends listing rows for the batch's hour. Rows
// already written for a (vendor, hour) pair are deleted first, so each hour
// holds at most one row per listing.
func (s *VendorPriceStore) InsertVendorPriceHistory(ctx context.Context, listings []domain.VendorListing) error {
	if len(listings) == 0 {
		return nil
	}

	type vendorHour struct {
		vendor string
		hour   time.Time
	}
	seen := make(map[vendorHour]struct{})
	for _, l := range listings {
		key := vendorHour{vendor: l.Vendor, hour: domain.TruncateToHour(l.FetchedAt)}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if _, err := s.pool.Exec(ctx,
			`DELETE FROM vendor_prices_history WHERE vendor = $1 AND fetched_at = $2`,
			key.vendor, key.hour,
		); err != nil {
			return fmt.Errorf("failed to clear vendor price history for %s@%s: %w", key.vendor, key.hour, err)
		}
	}

	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(
			`INSERT INTO vendor_prices_history (`+vendorListingColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
			vendorListingArgs(l)...,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert vendor price history: %w", err)
	}
	return nil
}

const vendorListingSelect = `SELECT vendor, title,
	COALESCE(price_single_text, ''), price_single_value,
	COALESCE(price_min_text, ''), price_min_value,
	COALESCE(price_max_text, ''), price_max_value,
	price_usd, COALESCE(currency, ''), COALESCE(source_url, ''), COALESCE(quickshop_url, ''),
	fetched_at, COALESCE(meta_number, ''), COALESCE(meta_group, ''),
	COALESCE(meta_abbreviation, ''), COALESCE(meta_group_name, ''),
	COALESCE(meta_rarity_hint, ''), product_id`

func scanVendorListings(rows pgx.Rows) ([]domain.VendorListing, error) {
	var listings []domain.VendorListing
	for rows.Next() {
		var l domain.VendorListing
		if err := rows.Scan(&l.Vendor, &l.Title,
			&l.PriceSingleText, &l.PriceSingleValue,
			&l.PriceMinText, &l.PriceMinValue,
			&l.PriceMaxText, &l.PriceMaxValue,
			&l.PriceUSD, &l.Currency, &l.SourceURL, &l.QuickshopURL,
			&l.FetchedAt, &l.Metadata.Number, &l.Metadata.GroupLabel,
			&l.Metadata.Abbreviation, &l.Metadata.GroupName,
			&l.Metadata.RarityHint, &l.ProductID); err != nil {
			return nil, fmt.Errorf("failed to scan vendor listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// VendorPricesForProduct returns all current listings resolved to one
// product.
func (s *VendorPriceStore) VendorPricesForProduct(ctx context.Context, productID int64) ([]domain.VendorListing, error) {
	rows, err := s.pool.Query(ctx,
		vendorListingSelect+` FROM vendor_prices WHERE product_id = $1 ORDER BY vendor, title`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor prices for product %d: %w", productID, err)
	}
	defer rows.Close()

	return scanVendorListings(rows)
}

// ListVendorPrices returns a page of current listings plus the unpaginated
// total, optionally filtered by vendor and by match state.
func (s *VendorPriceStore) ListVendorPrices(ctx context.Context, vendor string, matchedOnly bool, offset, limit int) ([]domain.VendorListing, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	if vendor != "" {
		where += fmt.Sprintf(" AND vendor = $%d", argNum)
		args = append(args, vendor)
		argNum++
	}
	if matchedOnly {
		where += " AND product_id IS NOT NULL"
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vendor_prices`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vendor prices: %w", err)
	}

	query := fmt.Sprintf(
		vendorListingSelect+` FROM vendor_prices%s ORDER BY vendor, title OFFSET $%d LIMIT $%d`,
		where, argNum, argNum+1,
	)
	args = append(args, offset, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vendor prices: %w", err)
	}
	defer rows.Close()

	listings, err := scanVendorListings(rows)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
