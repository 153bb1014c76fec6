package domain

import "time"

// MarketplaceGame is a game known to the trading marketplace API.
type MarketplaceGame struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Raw         string `json:"-"`
}

// MarketplaceExpansion is a marketplace-side expansion (set).
type MarketplaceExpansion struct {
	ID     int64  `json:"id"`
	GameID int64  `json:"gameId"`
	Code   string `json:"code,omitempty"`
	Name   string `json:"name"`
	Raw    string `json:"-"`
}

// MarketplaceBlueprint is the marketplace's canonical card record within an
// expansion; TCGPlayerID links it back to the catalog feed's product ids.
type MarketplaceBlueprint struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ExpansionID     int64  `json:"expansionId"`
	GameID          int64  `json:"gameId"`
	CategoryID      int64  `json:"categoryId"`
	Version         string `json:"version,omitempty"`
	CollectorNumber string `json:"collectorNumber,omitempty"`
	Rarity          string `json:"rarity,omitempty"`
	TCGPlayerID     *int64 `json:"tcgPlayerId,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	Raw             string `json:"-"`
}

// MarketplacePrice is the lowest listing found for a blueprint, with a
// best-effort USD conversion.
type MarketplacePrice struct {
	BlueprintID     int64     `json:"blueprintId"`
	ListingID       int64     `json:"listingId,omitempty"`
	TCGPlayerID     *int64    `json:"tcgPlayerId,omitempty"`
	ExpansionID     int64     `json:"expansionId,omitempty"`
	ExpansionCode   string    `json:"expansionCode,omitempty"`
	ExpansionName   string    `json:"expansionName,omitempty"`
	PriceCents      *int64    `json:"priceCents,omitempty"`
	PriceCurrency   string    `json:"priceCurrency,omitempty"`
	PriceValue      *float64  `json:"priceValue,omitempty"`
	PriceUSD        *float64  `json:"priceUsd,omitempty"`
	ConversionRate  *float64  `json:"conversionRateToUsd,omitempty"`
	Quantity        int       `json:"quantity,omitempty"`
	SellerUsername  string    `json:"sellerUsername,omitempty"`
	SellerCountry   string    `json:"sellerCountry,omitempty"`
	FetchedAt       time.Time `json:"fetchedAt"`
	Raw             string    `json:"-"`
}
