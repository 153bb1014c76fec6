package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("TCGVAULT_SERVER_PORT")
		os.Unsetenv("TCGVAULT_SERVER_ENVIRONMENT")
		os.Unsetenv("TCGVAULT_DATABASE_URL")
		os.Unsetenv("TCGVAULT_TCGCSV_BASE_URL")
		os.Unsetenv("TCGVAULT_CARDTRADER_API_KEY")
		os.Unsetenv("TCGVAULT_CARDTRADER_RATES_TTL")
		os.Unsetenv("TCGVAULT_VENDORS_KANZEN_ENABLED")
		os.Unsetenv("TCGVAULT_VENDORS_KANZEN_COLLECTION_PATH")
		os.Unsetenv("TCGVAULT_VENDORS_SHOPIFY_ENABLED")
		os.Unsetenv("TCGVAULT_MATCHING_ENABLE_DEBUG_LOGGING")
		os.Unsetenv("TCGVAULT_SCRAPER_ENABLE_CARDTRADER")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required database URL
		os.Setenv("TCGVAULT_DATABASE_URL", "postgres://localhost/tcgvault_test")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.TCGCSV.BaseURL != "https://tcgcsv.com/tcgplayer" {
			t.Errorf("TCGCSV.BaseURL = %s, want https://tcgcsv.com/tcgplayer", cfg.TCGCSV.BaseURL)
		}
		if cfg.CardTrader.BaseURL != "https://api.cardtrader.com/api/v2" {
			t.Errorf("CardTrader.BaseURL = %s, want https://api.cardtrader.com/api/v2", cfg.CardTrader.BaseURL)
		}
		if cfg.CardTrader.RatesTTL != time.Hour {
			t.Errorf("CardTrader.RatesTTL = %v, want 1h", cfg.CardTrader.RatesTTL)
		}
		if !cfg.Vendors.Kanzen.Enabled {
			t.Error("Vendors.Kanzen.Enabled = false, want true")
		}
		if cfg.Vendors.Shopify.Enabled {
			t.Error("Vendors.Shopify.Enabled = true, want false")
		}
		if !cfg.Scraper.EnableTCGCSV || !cfg.Scraper.EnableCardTrader || !cfg.Scraper.EnableVendors {
			t.Error("all scraper stages should be enabled by default")
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("TCGVAULT_SERVER_PORT", "9090")
		os.Setenv("TCGVAULT_SERVER_ENVIRONMENT", "production")
		os.Setenv("TCGVAULT_DATABASE_URL", "postgres://db.internal/tcgvault")
		os.Setenv("TCGVAULT_CARDTRADER_API_KEY", "ct-token")
		os.Setenv("TCGVAULT_CARDTRADER_RATES_TTL", "30m")
		os.Setenv("TCGVAULT_MATCHING_ENABLE_DEBUG_LOGGING", "true")
		os.Setenv("TCGVAULT_SCRAPER_ENABLE_CARDTRADER", "false")
		os.Setenv("TCGVAULT_VENDORS_KANZEN_COLLECTION_PATH", "/collections/all-singles")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Database.URL != "postgres://db.internal/tcgvault" {
			t.Errorf("Database.URL = %s, want postgres://db.internal/tcgvault", cfg.Database.URL)
		}
		if cfg.CardTrader.APIKey != "ct-token" {
			t.Errorf("CardTrader.APIKey = %s, want ct-token", cfg.CardTrader.APIKey)
		}
		if cfg.CardTrader.RatesTTL != 30*time.Minute {
			t.Errorf("CardTrader.RatesTTL = %v, want 30m", cfg.CardTrader.RatesTTL)
		}
		if !cfg.Matching.EnableDebugLogging {
			t.Error("Matching.EnableDebugLogging = false, want true")
		}
		if cfg.Scraper.EnableCardTrader {
			t.Error("Scraper.EnableCardTrader = true, want false")
		}
		if cfg.Vendors.Kanzen.CollectionPath != "/collections/all-singles" {
			t.Errorf("Vendors.Kanzen.CollectionPath = %s, want /collections/all-singles", cfg.Vendors.Kanzen.CollectionPath)
		}
	})

	t.Run("fails validation when database URL is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing database URL")
		}
	})

	t.Run("fails validation when shopify enabled without base URL", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("TCGVAULT_DATABASE_URL", "postgres://localhost/tcgvault_test")
		os.Setenv("TCGVAULT_VENDORS_SHOPIFY_ENABLED", "true")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing shopify base URL")
		}
	})
}
