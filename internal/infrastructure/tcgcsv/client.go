package tcgcsv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/tcgvault/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the tcgcsv.com catalog feed.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new catalog feed client. baseURL should point at the
// tcgplayer section of the feed, e.g. "https://tcgcsv.com/tcgplayer".
func NewClient(baseURL string) *Client {
	// The feed is a static CDN but we still pace ourselves: 5 req/sec with
	// a burst of 10 keeps full-catalog syncs polite.
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// envelope is the feed's standard response wrapper.
type envelope struct {
	Success bool              `json:"success"`
	Errors  []string          `json:"errors"`
	Results []json.RawMessage `json:"results"`
}

// getResults executes a GET against the feed and unwraps the results array.
// Transient failures are retried up to 3 times with linear backoff.
func (c *Client) getResults(ctx context.Context, reqURL string) ([]json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "TCGVault/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[TCGCSV] Request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrFeedFailure, err)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("[TCGCSV] Feed error (attempt %d) - Status: %d, URL: %s", attempt, resp.StatusCode, reqURL)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrFeedFailure, resp.StatusCode)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		return env.Results, nil
	}

	return nil, lastErr
}

// Categories fetches all top-level categories from the feed.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	results, err := c.getResults(ctx, fmt.Sprintf("%s/categories", c.baseURL))
	if err != nil {
		return nil, err
	}

	categories := MapCategories(results)
	log.Printf("[TCGCSV] Fetched %d categories", len(categories))
	return categories, nil
}

// Groups fetches all groups (sets) for a category.
func (c *Client) Groups(ctx context.Context, categoryID int64) ([]domain.CatalogGroup, error) {
	results, err := c.getResults(ctx, fmt.Sprintf("%s/%d/groups", c.baseURL, categoryID))
	if err != nil {
		return nil, err
	}

	groups := MapGroups(results, categoryID)
	log.Printf("[TCGCSV] Fetched %d groups for category %d", len(groups), categoryID)
	return groups, nil
}

// Products fetches all products for a group, including extended data.
func (c *Client) Products(ctx context.Context, categoryID, groupID int64) ([]domain.CatalogProduct, []domain.ExtendedDataEntry, error) {
	results, err := c.getResults(ctx, fmt.Sprintf("%s/%d/%d/products", c.baseURL, categoryID, groupID))
	if err != nil {
		return nil, nil, err
	}

	products, extended := MapProducts(results, categoryID, groupID)
	return products, extended, nil
}

// Prices fetches the price points for one product. The feed returns one row
// per sub-type (Normal, Foil, ...).
func (c *Client) Prices(ctx context.Context, productID int64) ([]domain.ProductPrice, error) {
	results, err := c.getResults(ctx, fmt.Sprintf("%s/%d/prices", c.baseURL, productID))
	if err != nil {
		return nil, err
	}

	return MapPrices(results, productID), nil
}
