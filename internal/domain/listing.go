package domain

import "time"

// Rarity hint values detected in vendor titles.
const (
	RarityHintHolofoil = "holofoil"
	RarityHintFoil     = "foil"
)

// TitleMetadata holds the structured signals extracted from a vendor
// listing title. Empty string means the signal was absent. Extraction is a
// pure function of the title, so recomputing it is idempotent.
type TitleMetadata struct {
	// Number is the product code embedded in the title (e.g. "GD01-118").
	Number string `json:"number,omitempty"`
	// GroupLabel is the first [...]-bracketed substring, trimmed.
	GroupLabel string `json:"groupLabel,omitempty"`
	// Abbreviation and GroupName come from vendors that supply a discrete
	// structured group field ("{abbrev} {type}: {name}") instead of
	// embedding the group in the title.
	Abbreviation string `json:"abbreviation,omitempty"`
	GroupName    string `json:"groupName,omitempty"`
	// RarityHint is RarityHintHolofoil, RarityHintFoil, or "".
	RarityHint string `json:"rarityHint,omitempty"`
}

// VendorListing is one scraped storefront entry. Created fresh each scrape
// run and immutable once extracted; ProductID stays nil until the matcher
// resolves it.
type VendorListing struct {
	Vendor string `json:"vendor"`
	Title  string `json:"title"`

	PriceSingleText  string   `json:"priceSingleText,omitempty"`
	PriceSingleValue *float64 `json:"priceSingleValue,omitempty"`
	PriceMinText     string   `json:"priceMinText,omitempty"`
	PriceMinValue    *float64 `json:"priceMinValue,omitempty"`
	PriceMaxText     string   `json:"priceMaxText,omitempty"`
	PriceMaxValue    *float64 `json:"priceMaxValue,omitempty"`
	// PriceUSD is a best-effort conversion of PriceSingleValue (or
	// PriceMinValue when no single price exists) into USD; nil when no
	// conversion rate was available.
	PriceUSD *float64 `json:"priceUsd,omitempty"`
	Currency string   `json:"currency,omitempty"`

	SourceURL    string    `json:"sourceUrl,omitempty"`
	QuickshopURL string    `json:"quickshopUrl,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
	Raw          string    `json:"-"`

	Metadata  TitleMetadata `json:"metadata"`
	ProductID *int64        `json:"productId,omitempty"`
}

// Key returns the identity used for current-price upserts and batch
// deduplication: vendor feeds can list the same product as both a "single"
// and a "range" price entry under the same title.
func (l VendorListing) Key() ListingKey {
	return ListingKey{Vendor: l.Vendor, Title: l.Title}
}

// ListingKey identifies a vendor listing row.
type ListingKey struct {
	Vendor string
	Title  string
}
