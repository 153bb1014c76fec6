package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tcgvault/backend/internal/domain"
	"github.com/tcgvault/backend/internal/usecase"
)

const shopifyPageSize = 250

// ShopifySource reads a storefront's public products.json feed. Unlike a
// scraped HTML grid the feed exposes the collection as a discrete field
// ("{abbrev} {type}: {name}"), which is parsed into structured group hints
// up front instead of being mined out of the title.
type ShopifySource struct {
	rest     *resty.Client
	baseURL  *url.URL
	currency string
}

// NewShopifySource creates a source for a storefront exposing the standard
// /products.json feed.
func NewShopifySource(baseURL, currency string) (*ShopifySource, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid storefront base URL %q: %w", baseURL, err)
	}

	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; TCGScraper/1.0)").
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)

	return &ShopifySource{rest: rest, baseURL: parsed, currency: currency}, nil
}

// Vendor identifies listings from this source by the storefront's host.
func (s *ShopifySource) Vendor() string {
	return s.baseURL.Host
}

type shopifyVariant struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

type shopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	ProductType string           `json:"product_type"`
	Variants    []shopifyVariant `json:"variants"`
}

type shopifyFeed struct {
	Products []shopifyProduct `json:"products"`
}

// FetchListings pages through the feed until an empty page. One listing is
// emitted per product, priced from its first variant.
func (s *ShopifySource) FetchListings(ctx context.Context) ([]domain.VendorListing, error) {
	var listings []domain.VendorListing
	fetchedAt := domain.TruncateToHour(time.Now())

	for page := 1; page <= maxCollectionPages; page++ {
		var feed shopifyFeed
		resp, err := s.rest.R().
			SetContext(ctx).
			SetQueryParam("limit", fmt.Sprintf("%d", shopifyPageSize)).
			SetQueryParam("page", fmt.Sprintf("%d", page)).
			SetResult(&feed).
			Get("/products.json")
		if err != nil {
			return nil, fmt.Errorf("fetching products feed page %d: %w", page, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetching products feed page %d: status %d", page, resp.StatusCode())
		}

		if len(feed.Products) == 0 {
			break
		}

		for _, product := range feed.Products {
			listing, ok := s.mapProduct(product, fetchedAt)
			if !ok {
				continue
			}
			listings = append(listings, listing)
		}

		if len(feed.Products) < shopifyPageSize {
			break
		}
	}

	log.Printf("[VENDOR] %s: fetched %d listings", s.Vendor(), len(listings))
	return listings, nil
}

func (s *ShopifySource) mapProduct(product shopifyProduct, fetchedAt time.Time) (domain.VendorListing, bool) {
	title := strings.TrimSpace(product.Title)
	if title == "" {
		return domain.VendorListing{}, false
	}

	priceText := ""
	if len(product.Variants) > 0 {
		priceText = product.Variants[0].Price
	}

	abbrev, name := usecase.ParseGroupField(product.ProductType)

	raw, _ := json.Marshal(product)
	return domain.VendorListing{
		Vendor:           s.Vendor(),
		Title:            title,
		PriceSingleText:  priceText,
		PriceSingleValue: ParsePriceValue(priceText),
		Currency:         s.currency,
		SourceURL:        s.resolve("/products/" + product.Handle),
		FetchedAt:        fetchedAt,
		Raw:              string(raw),
		Metadata: domain.TitleMetadata{
			Abbreviation: abbrev,
			GroupName:    name,
		},
	}, true
}

func (s *ShopifySource) resolve(ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return s.baseURL.ResolveReference(parsed).String()
}
