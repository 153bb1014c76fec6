package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/tcgvault/backend/internal/domain"
	"github.com/tcgvault/backend/internal/infrastructure/cardtrader"
)

// CatalogFeed is the catalog feed surface the ingest consumes.
type CatalogFeed interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Groups(ctx context.Context, categoryID int64) ([]domain.CatalogGroup, error)
	Products(ctx context.Context, categoryID, groupID int64) ([]domain.CatalogProduct, []domain.ExtendedDataEntry, error)
	Prices(ctx context.Context, productID int64) ([]domain.ProductPrice, error)
}

// MarketplaceAPI is the marketplace surface the ingest consumes.
type MarketplaceAPI interface {
	Games(ctx context.Context) ([]domain.MarketplaceGame, error)
	Expansions(ctx context.Context) ([]domain.MarketplaceExpansion, error)
	Blueprints(ctx context.Context, expansionID int64) ([]domain.MarketplaceBlueprint, error)
	MarketplaceProducts(ctx context.Context, expansionID int64) (map[string][]cardtrader.RawListing, error)
}

// RatesSource supplies currency conversion rates for USD normalization.
type RatesSource interface {
	Rates(ctx context.Context) map[string]float64
}

// IngestConfig controls which stages run and how.
type IngestConfig struct {
	// CategoryWhitelist restricts the feed sync to the named categories;
	// empty means all.
	CategoryWhitelist []string
	// GameWhitelist restricts the marketplace sync to the given game ids;
	// empty means all.
	GameWhitelist []int64

	EnableCatalog     bool
	EnableMarketplace bool
	EnableVendors     bool

	Matcher MatcherConfig
}

// IngestService runs one end-to-end scrape batch: catalog sync, feed
// prices, marketplace prices, and vendor price reconciliation, each stage
// individually toggleable. Every run is recorded through the tracker.
type IngestService struct {
	feed        CatalogFeed
	marketplace MarketplaceAPI
	rates       RatesSource

	catalogWriter domain.CatalogWriter
	priceStore    domain.PriceStore
	marketStore   domain.MarketplaceStore
	vendorStore   domain.VendorPriceStore

	reconciler *VendorPriceReconciler
	sources    []domain.VendorSource
	tracker    domain.RunTracker

	config IngestConfig
}

// NewIngestService wires an ingest batch. Any of feed, marketplace, or
// sources may be nil/empty when the corresponding stage is disabled.
func NewIngestService(
	feed CatalogFeed,
	marketplace MarketplaceAPI,
	rates RatesSource,
	catalogWriter domain.CatalogWriter,
	catalogReader domain.CatalogReader,
	priceStore domain.PriceStore,
	marketStore domain.MarketplaceStore,
	vendorStore domain.VendorPriceStore,
	sources []domain.VendorSource,
	tracker domain.RunTracker,
	config IngestConfig,
) *IngestService {
	return &IngestService{
		feed:          feed,
		marketplace:   marketplace,
		rates:         rates,
		catalogWriter: catalogWriter,
		priceStore:    priceStore,
		marketStore:   marketStore,
		vendorStore:   vendorStore,
		reconciler:    NewVendorPriceReconciler(catalogReader, config.Matcher),
		sources:       sources,
		tracker:       tracker,
		config:        config,
	}
}

// Run executes the enabled stages in order and records the run. A stage
// failure marks the run failed and aborts the remaining stages; the error
// is returned after the run record is finalized.
func (s *IngestService) Run(ctx context.Context, runID string) (domain.ScraperRun, error) {
	run := domain.ScraperRun{
		RunID:     runID,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.tracker.StartRun(ctx, run); err != nil {
		return run, fmt.Errorf("starting run: %w", err)
	}

	err := s.runStages(ctx, &run)

	completed := time.Now().UTC()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorMessage = err.Error()
	} else {
		run.Status = domain.RunStatusCompleted
	}

	if finishErr := s.tracker.FinishRun(ctx, run); finishErr != nil {
		log.Printf("[INGEST] Failed to record run %s: %v", run.RunID, finishErr)
	}
	return run, err
}

func (s *IngestService) runStages(ctx context.Context, run *domain.ScraperRun) error {
	if s.config.EnableCatalog {
		if err := s.syncCatalog(ctx, run); err != nil {
			return fmt.Errorf("catalog sync: %w", err)
		}
	}
	if s.config.EnableMarketplace {
		if err := s.syncMarketplace(ctx, run); err != nil {
			return fmt.Errorf("marketplace sync: %w", err)
		}
	}
	if s.config.EnableVendors {
		if err := s.syncVendorPrices(ctx, run); err != nil {
			return fmt.Errorf("vendor price sync: %w", err)
		}
	}
	return nil
}

// syncCatalog pulls categories, groups, products, and prices from the feed
// and persists them. Prices for the whole stage share one hourly stamp.
func (s *IngestService) syncCatalog(ctx context.Context, run *domain.ScraperRun) error {
	categories, err := s.feed.Categories(ctx)
	if err != nil {
		return err
	}
	categories = filterCategories(categories, s.config.CategoryWhitelist)
	if err := s.catalogWriter.UpsertCategories(ctx, categories); err != nil {
		return err
	}
	run.CategoriesSynced = len(categories)
	log.Printf("[INGEST] Synced %d categories", len(categories))

	fetchedAt := domain.TruncateToHour(time.Now())
	var productIDs []int64

	for _, category := range categories {
		groups, err := s.feed.Groups(ctx, category.CategoryID)
		if err != nil {
			return err
		}
		if err := s.catalogWriter.UpsertGroups(ctx, groups); err != nil {
			return err
		}
		run.GroupsSynced += len(groups)

		for _, group := range groups {
			products, extended, err := s.feed.Products(ctx, category.CategoryID, group.GroupID)
			if err != nil {
				log.Printf("[INGEST] Skipping products for group %d (%s): %v", group.GroupID, group.Name, err)
				continue
			}
			if err := s.catalogWriter.UpsertProducts(ctx, products); err != nil {
				return err
			}
			if err := s.catalogWriter.UpsertExtendedData(ctx, extended); err != nil {
				return err
			}
			run.ProductsSynced += len(products)
			for _, p := range products {
				productIDs = append(productIDs, p.ProductID)
			}
		}
	}
	log.Printf("[INGEST] Synced %d groups, %d products", run.GroupsSynced, run.ProductsSynced)

	var prices []domain.ProductPrice
	failures := 0
	for _, productID := range productIDs {
		rows, err := s.feed.Prices(ctx, productID)
		if err != nil {
			failures++
			continue
		}
		for i := range rows {
			rows[i].FetchedAt = fetchedAt
		}
		prices = append(prices, rows...)
	}
	if failures > 0 {
		log.Printf("[INGEST] Failed to fetch prices for %d products", failures)
	}

	if err := s.priceStore.UpsertProductPrices(ctx, prices); err != nil {
		return err
	}
	if err := s.priceStore.InsertProductPriceHistory(ctx, prices); err != nil {
		return err
	}
	run.PricesSynced = len(prices)
	log.Printf("[INGEST] Synced %d price rows", len(prices))
	return nil
}

// syncMarketplace pulls expansions and blueprints for whitelisted games,
// then records the lowest open listing per blueprint with USD conversion.
func (s *IngestService) syncMarketplace(ctx context.Context, run *domain.ScraperRun) error {
	games, err := s.marketplace.Games(ctx)
	if err != nil {
		return err
	}
	log.Printf("[INGEST] Marketplace knows %d games", len(games))

	expansions, err := s.marketplace.Expansions(ctx)
	if err != nil {
		return err
	}
	expansions = filterExpansions(expansions, s.config.GameWhitelist)
	log.Printf("[INGEST] Syncing %d marketplace expansions", len(expansions))

	rates := s.rates.Rates(ctx)
	fetchedAt := domain.TruncateToHour(time.Now())

	var prices []domain.MarketplacePrice
	failures := 0
	for _, expansion := range expansions {
		blueprints, err := s.marketplace.Blueprints(ctx, expansion.ID)
		if err != nil {
			failures++
			log.Printf("[INGEST] Skipping blueprints for expansion %d: %v", expansion.ID, err)
			continue
		}
		tcgPlayerByBlueprint := make(map[int64]*int64, len(blueprints))
		for _, bp := range blueprints {
			tcgPlayerByBlueprint[bp.ID] = bp.TCGPlayerID
		}

		listings, err := s.marketplace.MarketplaceProducts(ctx, expansion.ID)
		if err != nil {
			failures++
			log.Printf("[INGEST] Skipping listings for expansion %d: %v", expansion.ID, err)
			continue
		}

		for blueprintKey, candidates := range listings {
			blueprintID, err := strconv.ParseInt(blueprintKey, 10, 64)
			if err != nil {
				continue
			}
			lowest, ok := cardtrader.LowestPriceListing(candidates)
			if !ok {
				continue
			}
			prices = append(prices, cardtrader.MapListing(
				lowest, blueprintID, tcgPlayerByBlueprint[blueprintID], rates, fetchedAt,
			))
		}
	}
	if failures > 0 {
		log.Printf("[INGEST] Marketplace fetch failed for %d expansions", failures)
	}

	if err := s.marketStore.UpsertMarketplacePrices(ctx, prices); err != nil {
		return err
	}
	if err := s.marketStore.InsertMarketplacePriceHistory(ctx, prices); err != nil {
		return err
	}
	log.Printf("[INGEST] Synced %d marketplace prices", len(prices))
	return nil
}

// syncVendorPrices fetches listings from every source, reconciles them
// against the catalog, and persists current and history rows. A source
// that fails to fetch is skipped; the remaining sources still run.
func (s *IngestService) syncVendorPrices(ctx context.Context, run *domain.ScraperRun) error {
	var listings []domain.VendorListing
	for _, source := range s.sources {
		fetched, err := source.FetchListings(ctx)
		if err != nil {
			log.Printf("[INGEST] Vendor %s fetch failed: %v", source.Vendor(), err)
			continue
		}
		listings = append(listings, fetched...)
	}
	run.ListingsFetched = len(listings)
	if len(listings) == 0 {
		log.Printf("[INGEST] No vendor listings fetched")
		return nil
	}

	rates := s.rates.Rates(ctx)
	for i := range listings {
		value := listings[i].PriceSingleValue
		if value == nil {
			value = listings[i].PriceMinValue
		}
		listings[i].PriceUSD = cardtrader.ConvertValueToUSD(value, listings[i].Currency, rates)
	}

	reconciled, err := s.reconciler.Reconcile(ctx, listings)
	if err != nil {
		return err
	}
	for _, l := range reconciled {
		if l.ProductID != nil {
			run.ListingsMatched++
		}
	}

	if err := s.vendorStore.UpsertVendorPrices(ctx, reconciled); err != nil {
		return err
	}
	if err := s.vendorStore.InsertVendorPriceHistory(ctx, reconciled); err != nil {
		return err
	}
	log.Printf("[INGEST] Persisted %d vendor listings (%d matched)", len(reconciled), run.ListingsMatched)
	return nil
}

func filterCategories(categories []domain.Category, whitelist []string) []domain.Category {
	if len(whitelist) == 0 {
		return categories
	}
	allowed := make(map[string]struct{}, len(whitelist))
	for _, name := range whitelist {
		allowed[normalizeGroupName(name)] = struct{}{}
	}
	var filtered []domain.Category
	for _, c := range categories {
		if _, ok := allowed[normalizeGroupName(c.Name)]; ok {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func filterExpansions(expansions []domain.MarketplaceExpansion, whitelist []int64) []domain.MarketplaceExpansion {
	if len(whitelist) == 0 {
		return expansions
	}
	allowed := make(map[int64]struct{}, len(whitelist))
	for _, id := range whitelist {
		allowed[id] = struct{}{}
	}
	var filtered []domain.MarketplaceExpansion
	for _, e := range expansions {
		if _, ok := allowed[e.GameID]; ok {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
