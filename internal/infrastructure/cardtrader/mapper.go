package cardtrader

import (
	"encoding/json"
	"time"

	"github.com/tcgvault/backend/internal/domain"
)

type rawGame struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func mapGames(rows []rawGame) []domain.MarketplaceGame {
	games := make([]domain.MarketplaceGame, 0, len(rows))
	for _, row := range rows {
		raw, _ := json.Marshal(row)
		games = append(games, domain.MarketplaceGame{
			ID:          row.ID,
			Name:        row.Name,
			DisplayName: row.DisplayName,
			Raw:         string(raw),
		})
	}
	return games
}

type rawExpansion struct {
	ID     int64  `json:"id"`
	GameID int64  `json:"game_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
}

func mapExpansions(rows []rawExpansion) []domain.MarketplaceExpansion {
	expansions := make([]domain.MarketplaceExpansion, 0, len(rows))
	for _, row := range rows {
		raw, _ := json.Marshal(row)
		expansions = append(expansions, domain.MarketplaceExpansion{
			ID:     row.ID,
			GameID: row.GameID,
			Code:   row.Code,
			Name:   row.Name,
			Raw:    string(raw),
		})
	}
	return expansions
}

type rawBlueprint struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Version         string `json:"version"`
	GameID          int64  `json:"game_id"`
	CategoryID      int64  `json:"category_id"`
	TCGPlayerID     *int64 `json:"tcg_player_id"`
	ImageURL        string `json:"image_url"`
	FixedProperties struct {
		Rarity          string `json:"mtg_rarity"`
		CollectorNumber string `json:"collector_number"`
	} `json:"fixed_properties"`
}

// mapBlueprints flattens the nested blueprint payload. The expansion id is
// not echoed per row, so it comes from the request.
func mapBlueprints(rows []rawBlueprint, expansionID int64) []domain.MarketplaceBlueprint {
	blueprints := make([]domain.MarketplaceBlueprint, 0, len(rows))
	for _, row := range rows {
		raw, _ := json.Marshal(row)
		blueprints = append(blueprints, domain.MarketplaceBlueprint{
			ID:              row.ID,
			Name:            row.Name,
			ExpansionID:     expansionID,
			GameID:          row.GameID,
			CategoryID:      row.CategoryID,
			Version:         row.Version,
			CollectorNumber: row.FixedProperties.CollectorNumber,
			Rarity:          row.FixedProperties.Rarity,
			TCGPlayerID:     row.TCGPlayerID,
			ImageURL:        row.ImageURL,
			Raw:             string(raw),
		})
	}
	return blueprints
}

// RawListing is one open marketplace listing as returned by the API. Price
// appears both flattened (price_cents/price_currency) and nested under
// "price" depending on the endpoint version; both are handled.
type RawListing struct {
	ID            int64  `json:"id"`
	PriceCents    *int64 `json:"price_cents"`
	PriceCurrency string `json:"price_currency"`
	Price         struct {
		Cents    *int64 `json:"cents"`
		Currency string `json:"currency"`
	} `json:"price"`
	Quantity  int `json:"quantity"`
	Expansion struct {
		ID     int64  `json:"id"`
		Code   string `json:"code"`
		NameEn string `json:"name_en"`
		Name   string `json:"name"`
	} `json:"expansion"`
	User struct {
		ID          int64  `json:"id"`
		Username    string `json:"username"`
		CountryCode string `json:"country_code"`
	} `json:"user"`
}

func (l RawListing) priceCents() *int64 {
	if l.PriceCents != nil {
		return l.PriceCents
	}
	return l.Price.Cents
}

func (l RawListing) priceCurrency() string {
	if l.PriceCurrency != "" {
		return l.PriceCurrency
	}
	return l.Price.Currency
}

// LowestPriceListing returns the cheapest listing, treating a missing price
// as zero so rows without price data do not win over real offers arbitrarily
// (matching how the scraper has always behaved).
func LowestPriceListing(listings []RawListing) (RawListing, bool) {
	if len(listings) == 0 {
		return RawListing{}, false
	}

	best := listings[0]
	bestCents := listingSortCents(best)
	for _, candidate := range listings[1:] {
		if c := listingSortCents(candidate); c < bestCents {
			best = candidate
			bestCents = c
		}
	}
	return best, true
}

func listingSortCents(l RawListing) int64 {
	if cents := l.priceCents(); cents != nil {
		return *cents
	}
	return 0
}

// MapListing converts a marketplace listing into a price record for one
// blueprint, converting to USD when a rate for the listing currency exists.
func MapListing(listing RawListing, blueprintID int64, tcgPlayerID *int64, rates map[string]float64, fetchedAt time.Time) domain.MarketplacePrice {
	cents := listing.priceCents()
	currency := listing.priceCurrency()

	var priceValue *float64
	if cents != nil {
		v := roundTo(float64(*cents)/100, 6)
		priceValue = &v
	}

	priceUSD, rate := ConvertToUSD(cents, currency, rates)

	expansionName := listing.Expansion.NameEn
	if expansionName == "" {
		expansionName = listing.Expansion.Name
	}

	raw, _ := json.Marshal(listing)
	return domain.MarketplacePrice{
		BlueprintID:    blueprintID,
		ListingID:      listing.ID,
		TCGPlayerID:    tcgPlayerID,
		ExpansionID:    listing.Expansion.ID,
		ExpansionCode:  listing.Expansion.Code,
		ExpansionName:  expansionName,
		PriceCents:     cents,
		PriceCurrency:  currency,
		PriceValue:     priceValue,
		PriceUSD:       priceUSD,
		ConversionRate: rate,
		Quantity:       listing.Quantity,
		SellerUsername: listing.User.Username,
		SellerCountry:  listing.User.CountryCode,
		FetchedAt:      fetchedAt,
		Raw:            string(raw),
	}
}
