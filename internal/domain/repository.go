package domain

import (
	"context"
	"time"
)

// CatalogReader is the read interface the matching core consumes. Both
// methods must tolerate large identifier sets by chunking queries
// internally; the core asks once per batch, never once per listing.
type CatalogReader interface {
	ProductsByNumber(ctx context.Context, numbers []string) ([]CatalogProduct, error)
	GroupsByName(ctx context.Context, names []string) ([]CatalogGroup, error)
}

// VendorSource supplies raw listings from one storefront. Implementations
// own all fetching/parsing; the core only sees the listing records.
type VendorSource interface {
	Vendor() string
	FetchListings(ctx context.Context) ([]VendorListing, error)
}

// VendorPriceStore persists reconciled vendor listings: current rows keyed
// by (vendor, title), history rows keyed by (vendor, fetched-at hour) with
// same-hour rows deleted before insert so each hour holds at most one row
// per listing.
type VendorPriceStore interface {
	UpsertVendorPrices(ctx context.Context, listings []VendorListing) error
	InsertVendorPriceHistory(ctx context.Context, listings []VendorListing) error
}

// CatalogWriter persists catalog records pulled from the upstream feed.
// Upserts are keyed by the upstream identifiers, so re-running a sync is
// idempotent.
type CatalogWriter interface {
	UpsertCategories(ctx context.Context, categories []Category) error
	UpsertGroups(ctx context.Context, groups []CatalogGroup) error
	UpsertProducts(ctx context.Context, products []CatalogProduct) error
	UpsertExtendedData(ctx context.Context, entries []ExtendedDataEntry) error
}

// ProductFilter narrows ListProducts; zero values mean "no constraint".
type ProductFilter struct {
	CategoryID *int64
	GroupID    *int64
	Number     string
	Search     string
}

// CatalogStore is the read surface backing the HTTP API. Extended-data
// pages are ordered by (product_id, key), the table's composite key.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListGroups(ctx context.Context, categoryID *int64, offset, limit int) ([]CatalogGroup, int64, error)
	ListProducts(ctx context.Context, filter ProductFilter, offset, limit int) ([]CatalogProduct, int64, error)
	GetProduct(ctx context.Context, productID int64) (*CatalogProduct, error)
	ListExtendedData(ctx context.Context, productID *int64, offset, limit int) ([]ExtendedDataEntry, int64, error)
}

// PriceStore persists and serves feed prices for catalog products. History
// inserts follow the same hourly-bucket rule as vendor prices.
type PriceStore interface {
	UpsertProductPrices(ctx context.Context, prices []ProductPrice) error
	InsertProductPriceHistory(ctx context.Context, prices []ProductPrice) error
	CurrentPrices(ctx context.Context, productIDs []int64) ([]ProductPrice, error)
	PriceHistory(ctx context.Context, productID int64, since time.Time) ([]ProductPrice, error)
}

// VendorPriceReader serves reconciled vendor listings to the HTTP API.
type VendorPriceReader interface {
	VendorPricesForProduct(ctx context.Context, productID int64) ([]VendorListing, error)
	ListVendorPrices(ctx context.Context, vendor string, matchedOnly bool, offset, limit int) ([]VendorListing, int64, error)
}

// MarketplaceStore persists marketplace blueprint prices. History inserts
// follow the same hourly-bucket rule as the other price stores.
type MarketplaceStore interface {
	UpsertMarketplacePrices(ctx context.Context, prices []MarketplacePrice) error
	InsertMarketplacePriceHistory(ctx context.Context, prices []MarketplacePrice) error
	MarketplacePricesForTCGPlayerID(ctx context.Context, tcgPlayerID int64) ([]MarketplacePrice, error)
}

// RunTracker records scraper run lifecycles.
type RunTracker interface {
	StartRun(ctx context.Context, run ScraperRun) error
	FinishRun(ctx context.Context, run ScraperRun) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
