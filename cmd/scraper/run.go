package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tcgvault/backend/config"
	"github.com/tcgvault/backend/internal/domain"
	"github.com/tcgvault/backend/internal/infrastructure/cache"
	"github.com/tcgvault/backend/internal/infrastructure/cardtrader"
	"github.com/tcgvault/backend/internal/infrastructure/postgres"
	"github.com/tcgvault/backend/internal/infrastructure/tcgcsv"
	"github.com/tcgvault/backend/internal/infrastructure/vendors"
	"github.com/tcgvault/backend/internal/usecase"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scrape batch",
	Long:  "Runs one end-to-end batch: catalog sync, feed prices, marketplace prices, and vendor price reconciliation. Stages can be skipped individually.",
	RunE:  runScrape,
}

var (
	runSkipCatalog     bool
	runSkipMarketplace bool
	runSkipVendors     bool
)

func init() {
	runCmd.Flags().BoolVar(&runSkipCatalog, "skip-catalog", false, "Skip the catalog and feed price sync")
	runCmd.Flags().BoolVar(&runSkipMarketplace, "skip-marketplace", false, "Skip the marketplace price sync")
	runCmd.Flags().BoolVar(&runSkipVendors, "skip-vendors", false, "Skip vendor storefront scraping")

	rootCmd.AddCommand(runCmd)
}

func runScrape(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	ingestConfig := usecase.IngestConfig{
		CategoryWhitelist: cfg.TCGCSV.CategoryWhitelist,
		GameWhitelist:     cfg.CardTrader.GameWhitelist,
		EnableCatalog:     cfg.Scraper.EnableTCGCSV && !runSkipCatalog,
		EnableMarketplace: cfg.Scraper.EnableCardTrader && !runSkipMarketplace,
		EnableVendors:     cfg.Scraper.EnableVendors && !runSkipVendors,
		Matcher: usecase.MatcherConfig{
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	}

	var marketplace usecase.MarketplaceAPI
	if ingestConfig.EnableMarketplace {
		client, err := cardtrader.NewClient(cfg.CardTrader.APIKey, cfg.CardTrader.BaseURL)
		if err != nil {
			return fmt.Errorf("building marketplace client: %w", err)
		}
		marketplace = client
	}

	sources, err := buildVendorSources(cfg)
	if err != nil {
		return err
	}

	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	catalogRepo := postgres.NewCatalogRepository(db)
	service := usecase.NewIngestService(
		tcgcsv.NewClient(cfg.TCGCSV.BaseURL),
		marketplace,
		cardtrader.NewRatesProvider(cfg.CardTrader.RatesURL, memoryCache, cfg.CardTrader.RatesTTL),
		catalogRepo,
		catalogRepo,
		postgres.NewPriceStore(db),
		postgres.NewMarketplaceStore(db),
		postgres.NewVendorPriceStore(db),
		sources,
		postgres.NewRunTracker(db),
		ingestConfig,
	)

	runID := postgres.NewRunID()
	log.Printf("Starting scrape run %s", runID)

	run, err := service.Run(ctx, runID)
	if err != nil {
		log.Printf("Run %s failed: %v", runID, err)
		os.Exit(1)
	}

	log.Printf("Run %s completed: %d categories, %d groups, %d products, %d prices, %d/%d listings matched",
		run.RunID, run.CategoriesSynced, run.GroupsSynced, run.ProductsSynced,
		run.PricesSynced, run.ListingsMatched, run.ListingsFetched)
	return nil
}

func buildVendorSources(cfg *config.Config) ([]domain.VendorSource, error) {
	var sources []domain.VendorSource

	if cfg.Vendors.Kanzen.Enabled {
		kanzen, err := vendors.NewKanzenSource(
			cfg.Vendors.Kanzen.BaseURL,
			cfg.Vendors.Kanzen.CollectionPath,
			cfg.Vendors.Kanzen.Currency,
		)
		if err != nil {
			return nil, fmt.Errorf("building kanzen source: %w", err)
		}
		sources = append(sources, kanzen)
	}

	if cfg.Vendors.Shopify.Enabled {
		shopify, err := vendors.NewShopifySource(cfg.Vendors.Shopify.BaseURL, cfg.Vendors.Shopify.Currency)
		if err != nil {
			return nil, fmt.Errorf("building shopify source: %w", err)
		}
		sources = append(sources, shopify)
	}

	return sources, nil
}
