package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tcgvault/backend/internal/domain"
)

// MarketplaceStore persists lowest-listing marketplace prices. Current rows
// are keyed by blueprint id; history rows by (blueprint, hour).
type MarketplaceStore struct {
	pool *pgxpool.Pool
}

// NewMarketplaceStore creates a store on the given database.
func NewMarketplaceStore(db *DB) *MarketplaceStore {
	return &MarketplaceStore{pool: db.Pool()}
}

const marketplacePriceColumns = `blueprint_id, listing_id, tcg_player_id, expansion_id,
	expansion_code, expansion_name, price_cents, price_currency, price_value,
	price_usd, conversion_rate_to_usd, quantity, seller_username, seller_country, fetched_at, raw`

func marketplacePriceArgs(p domain.MarketplacePrice) []any {
	return []any{
		p.BlueprintID, p.ListingID, p.TCGPlayerID, p.ExpansionID,
		p.ExpansionCode, p.ExpansionName, p.PriceCents, p.PriceCurrency, p.PriceValue,
		p.PriceUSD, p.ConversionRate, p.Quantity, p.SellerUsername, p.SellerCountry,
		p.FetchedAt, p.Raw,
	}
}

// UpsertMarketplacePrices replaces the current price row per blueprint.
// Duplicate blueprints within the batch collapse to the last occurrence.
func (s *MarketplaceStore) UpsertMarketplacePrices(ctx context.Context, prices []domain.MarketplacePrice) error {
	if len(prices) == 0 {
		return nil
	}

	byBlueprint := make(map[int64]domain.MarketplacePrice, len(prices))
	order := make([]int64, 0, len(prices))
	for _, p := range prices {
		if _, ok := byBlueprint[p.BlueprintID]; !ok {
			order = append(order, p.BlueprintID)
		}
		byBlueprint[p.BlueprintID] = p
	}

	batch := &pgx.Batch{}
	for _, id := range order {
		p := byBlueprint[id]
		batch.Queue(
			`INSERT INTO cardtrader_prices (`+marketplacePriceColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			 ON CONFLICT (blueprint_id) DO UPDATE SET
			   listing_id = $2, tcg_player_id = $3, expansion_id = $4, expansion_code = $5,
			   expansion_name = $6, price_cents = $7, price_currency = $8, price_value = $9,
			   price_usd = $10, conversion_rate_to_usd = $11, quantity = $12,
			   seller_username = $13, seller_country = $14, fetched_at = $15, raw = $16`,
			marketplacePriceArgs(p)...,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert marketplace prices: %w", err)
	}
	return nil
}

// InsertMarketplacePriceHistory appends price rows for the batch's hour,
// clearing any rows already written for that hour first.
func (s *MarketplaceStore) InsertMarketplacePriceHistory(ctx context.Context, prices []domain.MarketplacePrice) error {
	if len(prices) == 0 {
		return nil
	}

	seen := make(map[time.Time]struct{})
	for _, p := range prices {
		hour := domain.TruncateToHour(p.FetchedAt)
		if _, ok := seen[hour]; ok {
			continue
		}
		seen[hour] = struct{}{}
		if _, err := s.pool.Exec(ctx,
			`DELETE FROM cardtrader_prices_history WHERE fetched_at = $1`, hour,
		); err != nil {
			return fmt.Errorf("failed to clear marketplace price history for hour %s: %w", hour, err)
		}
	}

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(
			`INSERT INTO cardtrader_prices_history (`+marketplacePriceColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			marketplacePriceArgs(p)...,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert marketplace price history: %w", err)
	}
	return nil
}

// MarketplacePricesForTCGPlayerID returns current marketplace prices whose
// blueprint links to the given catalog product id.
func (s *MarketplaceStore) MarketplacePricesForTCGPlayerID(ctx context.Context, tcgPlayerID int64) ([]domain.MarketplacePrice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT blueprint_id, COALESCE(listing_id, 0), tcg_player_id, COALESCE(expansion_id, 0),
		        COALESCE(expansion_code, ''), COALESCE(expansion_name, ''),
		        price_cents, COALESCE(price_currency, ''), price_value, price_usd,
		        conversion_rate_to_usd, COALESCE(quantity, 0),
		        COALESCE(seller_username, ''), COALESCE(seller_country, ''), fetched_at
		 FROM cardtrader_prices WHERE tcg_player_id = $1 ORDER BY blueprint_id`,
		tcgPlayerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query marketplace prices for product %d: %w", tcgPlayerID, err)
	}
	defer rows.Close()

	var prices []domain.MarketplacePrice
	for rows.Next() {
		var p domain.MarketplacePrice
		if err := rows.Scan(&p.BlueprintID, &p.ListingID, &p.TCGPlayerID, &p.ExpansionID,
			&p.ExpansionCode, &p.ExpansionName, &p.PriceCents, &p.PriceCurrency,
			&p.PriceValue, &p.PriceUSD, &p.ConversionRate, &p.Quantity,
			&p.SellerUsername, &p.SellerCountry, &p.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan marketplace price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}
