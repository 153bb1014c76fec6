package tcgcsv

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tcgvault/backend/internal/domain"
)

// The feed emits timestamps in a handful of near-ISO layouts.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeTimestamp parses a feed timestamp, returning the zero time when
// the value is empty or in an unrecognized layout.
func NormalizeTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

type rawCategory struct {
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
	ModifiedOn string `json:"modifiedOn"`
}

// MapCategories converts raw feed rows into domain categories.
func MapCategories(results []json.RawMessage) []domain.Category {
	categories := make([]domain.Category, 0, len(results))
	for _, raw := range results {
		var row rawCategory
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}
		categories = append(categories, domain.Category{
			CategoryID: row.CategoryID,
			Name:       strings.TrimSpace(row.Name),
			ModifiedOn: NormalizeTimestamp(row.ModifiedOn),
			Raw:        string(raw),
		})
	}
	return categories
}

type rawGroup struct {
	GroupID        int64  `json:"groupId"`
	Name           string `json:"name"`
	Abbreviation   string `json:"abbreviation"`
	IsSupplemental bool   `json:"isSupplemental"`
	PublishedOn    string `json:"publishedOn"`
	ModifiedOn     string `json:"modifiedOn"`
}

// MapGroups converts raw feed rows into domain groups. The feed nests groups
// under a category URL, so the category id comes from the caller.
func MapGroups(results []json.RawMessage, categoryID int64) []domain.CatalogGroup {
	groups := make([]domain.CatalogGroup, 0, len(results))
	for _, raw := range results {
		var row rawGroup
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}
		groups = append(groups, domain.CatalogGroup{
			GroupID:        row.GroupID,
			CategoryID:     categoryID,
			Name:           strings.TrimSpace(row.Name),
			Abbreviation:   strings.TrimSpace(row.Abbreviation),
			IsSupplemental: row.IsSupplemental,
			PublishedOn:    NormalizeTimestamp(row.PublishedOn),
			ModifiedOn:     NormalizeTimestamp(row.ModifiedOn),
			Raw:            string(raw),
		})
	}
	return groups
}

type rawExtendedData struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Value       string `json:"value"`
}

type rawProduct struct {
	ProductID    int64             `json:"productId"`
	Name         string            `json:"name"`
	CleanName    string            `json:"cleanName"`
	ImageURL     string            `json:"imageUrl"`
	URL          string            `json:"url"`
	Number       string            `json:"number"`
	ModifiedOn   string            `json:"modifiedOn"`
	ExtendedData []rawExtendedData `json:"extendedData"`
}

// MapProducts converts raw feed rows into domain products plus a flattened
// list of extended-data entries. The product's Rarity field is populated
// from the first extended-data entry named "rarity".
func MapProducts(results []json.RawMessage, categoryID, groupID int64) ([]domain.CatalogProduct, []domain.ExtendedDataEntry) {
	products := make([]domain.CatalogProduct, 0, len(results))
	var extended []domain.ExtendedDataEntry

	for _, raw := range results {
		var row rawProduct
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}

		products = append(products, domain.CatalogProduct{
			ProductID:  row.ProductID,
			CategoryID: categoryID,
			GroupID:    groupID,
			Name:       strings.TrimSpace(row.Name),
			CleanName:  strings.TrimSpace(row.CleanName),
			Number:     strings.TrimSpace(row.Number),
			Rarity:     extractRarity(row.ExtendedData),
			ImageURL:   strings.TrimSpace(row.ImageURL),
			URL:        strings.TrimSpace(row.URL),
			ModifiedOn: NormalizeTimestamp(row.ModifiedOn),
			Raw:        string(raw),
		})

		for _, entry := range row.ExtendedData {
			key := strings.TrimSpace(entry.Name)
			if key == "" {
				key = strings.TrimSpace(entry.DisplayName)
			}
			if key == "" {
				continue
			}
			extended = append(extended, domain.ExtendedDataEntry{
				ProductID: row.ProductID,
				Key:       key,
				Value:     strings.TrimSpace(entry.Value),
			})
		}
	}

	return products, extended
}

// extractRarity returns the first rarity value found in extended data,
// matching either the name or the display name case-insensitively.
func extractRarity(entries []rawExtendedData) string {
	for _, entry := range entries {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		display := strings.ToLower(strings.TrimSpace(entry.DisplayName))
		if name == "rarity" || display == "rarity" {
			return strings.TrimSpace(entry.Value)
		}
	}
	return ""
}

type rawPrice struct {
	ProductID      int64    `json:"productId"`
	LowPrice       *float64 `json:"lowPrice"`
	MidPrice       *float64 `json:"midPrice"`
	HighPrice      *float64 `json:"highPrice"`
	MarketPrice    *float64 `json:"marketPrice"`
	DirectLowPrice *float64 `json:"directLowPrice"`
	SubTypeName    string   `json:"subTypeName"`
}

// MapPrices converts raw feed price rows into domain price points. FetchedAt
// is left zero; the ingest stamps the whole batch with one hourly timestamp.
func MapPrices(results []json.RawMessage, productID int64) []domain.ProductPrice {
	prices := make([]domain.ProductPrice, 0, len(results))
	for _, raw := range results {
		var row rawPrice
		if err := json.Unmarshal(raw, &row); err != nil {
			continue
		}
		id := row.ProductID
		if id == 0 {
			id = productID
		}
		prices = append(prices, domain.ProductPrice{
			ProductID:      id,
			LowPrice:       row.LowPrice,
			MidPrice:       row.MidPrice,
			HighPrice:      row.HighPrice,
			MarketPrice:    row.MarketPrice,
			DirectLowPrice: row.DirectLowPrice,
			SubTypeName:    strings.TrimSpace(row.SubTypeName),
			Raw:            string(raw),
		})
	}
	return prices
}
