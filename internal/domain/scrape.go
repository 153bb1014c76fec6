package domain

import "time"

// Scraper run lifecycle states.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ScraperRun records one end-to-end ingest batch.
type ScraperRun struct {
	RunID            string     `json:"runId"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	CategoriesSynced int        `json:"categoriesSynced"`
	GroupsSynced     int        `json:"groupsSynced"`
	ProductsSynced   int        `json:"productsSynced"`
	PricesSynced     int        `json:"pricesSynced"`
	ListingsFetched  int        `json:"listingsFetched"`
	ListingsMatched  int        `json:"listingsMatched"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
}
