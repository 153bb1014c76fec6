package domain

import "time"

// Category is a top-level game/category from the catalog feed (e.g. "Gundam").
type Category struct {
	CategoryID int64     `json:"categoryId"`
	Name       string    `json:"name"`
	ModifiedOn time.Time `json:"modifiedOn,omitempty"`
	Raw        string    `json:"-"`
}

// CatalogGroup is a set/expansion within a category. Abbreviation is the
// short set code some vendors use instead of the full name.
type CatalogGroup struct {
	GroupID        int64     `json:"groupId"`
	CategoryID     int64     `json:"categoryId"`
	Name           string    `json:"name"`
	Abbreviation   string    `json:"abbreviation,omitempty"`
	IsSupplemental bool      `json:"isSupplemental"`
	PublishedOn    time.Time `json:"publishedOn,omitempty"`
	ModifiedOn     time.Time `json:"modifiedOn,omitempty"`
	Raw            string    `json:"-"`
}

// CatalogProduct is a canonical product. Number is the printed product code
// (e.g. "GD01-118") and is not unique: the same code can recur across print
// runs and groups, which is the ambiguity the matcher resolves.
type CatalogProduct struct {
	ProductID  int64     `json:"productId"`
	CategoryID int64     `json:"categoryId"`
	GroupID    int64     `json:"groupId"`
	Name       string    `json:"name"`
	CleanName  string    `json:"cleanName,omitempty"`
	Number     string    `json:"number,omitempty"`
	Rarity     string    `json:"rarity,omitempty"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	URL        string    `json:"url,omitempty"`
	ModifiedOn time.Time `json:"modifiedOn,omitempty"`
	Raw        string    `json:"-"`
}

// ExtendedDataEntry is one key/value attribute attached to a product
// (rarity, card text, attack points, ...).
type ExtendedDataEntry struct {
	ProductID int64  `json:"productId"`
	Key       string `json:"key"`
	Value     string `json:"value,omitempty"`
}

// ProductPrice is one price point for a product from the catalog feed.
type ProductPrice struct {
	ProductID      int64     `json:"productId"`
	LowPrice       *float64  `json:"lowPrice,omitempty"`
	MidPrice       *float64  `json:"midPrice,omitempty"`
	HighPrice      *float64  `json:"highPrice,omitempty"`
	MarketPrice    *float64  `json:"marketPrice,omitempty"`
	DirectLowPrice *float64  `json:"directLowPrice,omitempty"`
	SubTypeName    string    `json:"subTypeName,omitempty"`
	FetchedAt      time.Time `json:"fetchedAt"`
	Raw            string    `json:"-"`
}

// TruncateToHour zeroes everything below the hour. Scrape batches are
// identified by their hour so repeated runs within the same hour replace
// rather than duplicate history rows.
func TruncateToHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
