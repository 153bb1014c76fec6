package cardtrader

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tcgvault/backend/internal/domain"
)

// Client talks to the CardTrader marketplace API (v2). All endpoints
// require a bearer token.
type Client struct {
	rest *resty.Client
}

// NewClient creates a marketplace client. The API token is mandatory.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: marketplace API key not set", domain.ErrMissingCredentials)
	}

	rest := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{rest: rest}, nil
}

// gamesEnvelope wraps the /games response, which nests the list under "array".
type gamesEnvelope struct {
	Array []rawGame `json:"array"`
}

// Games fetches all games known to the marketplace.
func (c *Client) Games(ctx context.Context) ([]domain.MarketplaceGame, error) {
	var env gamesEnvelope
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&env).
		Get("/games")
	if err != nil {
		return nil, fmt.Errorf("marketplace games request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("marketplace games request failed: status %d", resp.StatusCode())
	}

	games := mapGames(env.Array)
	log.Printf("[CARDTRADER] Fetched %d games", len(games))
	return games, nil
}

// Expansions fetches every expansion across all games. Callers filter by
// game id themselves; the endpoint has no server-side filter.
func (c *Client) Expansions(ctx context.Context) ([]domain.MarketplaceExpansion, error) {
	var rows []rawExpansion
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&rows).
		Get("/expansions")
	if err != nil {
		return nil, fmt.Errorf("marketplace expansions request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("marketplace expansions request failed: status %d", resp.StatusCode())
	}

	expansions := mapExpansions(rows)
	log.Printf("[CARDTRADER] Fetched %d expansions", len(expansions))
	return expansions, nil
}

// Blueprints fetches the canonical card records for one expansion.
func (c *Client) Blueprints(ctx context.Context, expansionID int64) ([]domain.MarketplaceBlueprint, error) {
	var rows []rawBlueprint
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("expansion_id", fmt.Sprintf("%d", expansionID)).
		SetResult(&rows).
		Get("/blueprints/export")
	if err != nil {
		return nil, fmt.Errorf("blueprints request failed for expansion %d: %w", expansionID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("blueprints request failed for expansion %d: status %d", expansionID, resp.StatusCode())
	}

	return mapBlueprints(rows, expansionID), nil
}

// MarketplaceProducts fetches the open listings for one expansion, keyed by
// blueprint id (the API returns string keys).
func (c *Client) MarketplaceProducts(ctx context.Context, expansionID int64) (map[string][]RawListing, error) {
	listings := make(map[string][]RawListing)
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("expansion_id", fmt.Sprintf("%d", expansionID)).
		SetResult(&listings).
		Get("/marketplace/products")
	if err != nil {
		return nil, fmt.Errorf("marketplace products request failed for expansion %d: %w", expansionID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("marketplace products request failed for expansion %d: status %d", expansionID, resp.StatusCode())
	}

	return listings, nil
}
