package vendors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/tcgvault/backend/internal/domain"
)

// Hard cap on pagination depth so a broken "next" link can't loop forever.
const maxCollectionPages = 500

// KanzenSource scrapes a Kanzen-style storefront: a paginated collection
// page where each product tile carries a title, one-or-range prices, and a
// quickshop URL.
type KanzenSource struct {
	rest           *resty.Client
	baseURL        *url.URL
	collectionPath string
	currency       string
}

// NewKanzenSource creates a source for the given storefront base URL and
// collection path (e.g. "/collections/gundam-singles-all").
func NewKanzenSource(baseURL, collectionPath, currency string) (*KanzenSource, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid storefront base URL %q: %w", baseURL, err)
	}

	rest := resty.New().
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; TCGScraper/1.0)").
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)

	return &KanzenSource{
		rest:           rest,
		baseURL:        parsed,
		collectionPath: collectionPath,
		currency:       currency,
	}, nil
}

// Vendor identifies listings from this source by the storefront's host.
func (s *KanzenSource) Vendor() string {
	return s.baseURL.Host
}

// FetchListings walks every collection page and returns the raw listings.
// The whole crawl shares one hourly fetched-at stamp.
func (s *KanzenSource) FetchListings(ctx context.Context) ([]domain.VendorListing, error) {
	var listings []domain.VendorListing
	fetchedAt := domain.TruncateToHour(time.Now())

	pageURL := s.resolve(s.collectionPath)
	for page := 0; pageURL != "" && page < maxCollectionPages; page++ {
		resp, err := s.rest.R().SetContext(ctx).Get(pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetching collection page %s: %w", pageURL, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetching collection page %s: status %d", pageURL, resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
		if err != nil {
			return nil, fmt.Errorf("parsing collection page %s: %w", pageURL, err)
		}

		listings = append(listings, s.parsePage(doc, pageURL, fetchedAt)...)
		pageURL = s.nextPageURL(doc)
	}

	log.Printf("[VENDOR] %s: fetched %d listings", s.Vendor(), len(listings))
	return listings, nil
}

// parsePage extracts one listing per product tile. Tiles without a title
// are skipped.
func (s *KanzenSource) parsePage(doc *goquery.Document, sourceURL string, fetchedAt time.Time) []domain.VendorListing {
	var listings []domain.VendorListing

	doc.Find("li.productgrid--item").Each(func(_ int, item *goquery.Selection) {
		info := item.Find("div.productitem--info").First()
		if info.Length() == 0 {
			return
		}

		title := strings.TrimSpace(info.Find(".productitem--title").First().Text())
		if title == "" {
			return
		}

		priceSingle := strings.TrimSpace(info.Find(".price__current--single").First().Text())
		priceMin := strings.TrimSpace(info.Find(".price__current--min").First().Text())
		priceMax := strings.TrimSpace(info.Find(".price__current--max").First().Text())

		quickshopRel, _ := item.Attr("data-product-quickshop-url")
		quickshopURL := ""
		if quickshopRel != "" {
			quickshopURL = s.resolve(quickshopRel)
		}

		raw, _ := json.Marshal(map[string]string{
			"title":         title,
			"price_single":  priceSingle,
			"price_min":     priceMin,
			"price_max":     priceMax,
			"quickshop_url": quickshopRel,
		})

		listings = append(listings, domain.VendorListing{
			Vendor:           s.Vendor(),
			Title:            title,
			PriceSingleText:  priceSingle,
			PriceSingleValue: ParsePriceValue(priceSingle),
			PriceMinText:     priceMin,
			PriceMinValue:    ParsePriceValue(priceMin),
			PriceMaxText:     priceMax,
			PriceMaxValue:    ParsePriceValue(priceMax),
			Currency:         s.currency,
			SourceURL:        sourceURL,
			QuickshopURL:     quickshopURL,
			FetchedAt:        fetchedAt,
			Raw:              string(raw),
		})
	})

	return listings
}

// nextPageURL returns the resolved href of the pagination "next" anchor, or
// "" on the last page.
func (s *KanzenSource) nextPageURL(doc *goquery.Document) string {
	href, ok := doc.Find("li.pagination--next a").First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	return s.resolve(href)
}

// resolve makes a possibly-relative storefront URL absolute.
func (s *KanzenSource) resolve(ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return s.baseURL.ResolveReference(parsed).String()
}
