package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tcgvault/backend/config"
	httpDelivery "github.com/tcgvault/backend/internal/delivery/http"
	"github.com/tcgvault/backend/internal/infrastructure/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting TCGVault Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	db, err := postgres.Connect(context.Background(), cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	catalogRepo := postgres.NewCatalogRepository(db)
	priceStore := postgres.NewPriceStore(db)
	vendorStore := postgres.NewVendorPriceStore(db)
	marketStore := postgres.NewMarketplaceStore(db)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(catalogRepo, priceStore, vendorStore, marketStore)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
