package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	TCGCSV     TCGCSVConfig
	CardTrader CardTraderConfig
	Vendors    VendorsConfig
	Matching   MatchingConfig
	Scraper    ScraperConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// TCGCSVConfig holds the catalog feed configuration
type TCGCSVConfig struct {
	BaseURL           string   `mapstructure:"base_url"`
	CategoryWhitelist []string `mapstructure:"category_whitelist"`
}

// CardTraderConfig holds the marketplace API configuration
type CardTraderConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	RatesURL      string        `mapstructure:"rates_url"`
	RatesTTL      time.Duration `mapstructure:"rates_ttl"`
	GameWhitelist []int64       `mapstructure:"game_whitelist"`
}

// VendorsConfig holds vendor storefront configuration
type VendorsConfig struct {
	Kanzen  KanzenConfig  `mapstructure:"kanzen"`
	Shopify ShopifyConfig `mapstructure:"shopify"`
}

// KanzenConfig configures the HTML storefront source
type KanzenConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	CollectionPath string `mapstructure:"collection_path"`
	Currency       string `mapstructure:"currency"`
}

// ShopifyConfig configures the JSON feed storefront source
type ShopifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BaseURL  string `mapstructure:"base_url"`
	Currency string `mapstructure:"currency"`
}

// MatchingConfig holds product matcher configuration
type MatchingConfig struct {
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// ScraperConfig toggles the scraper stages
type ScraperConfig struct {
	EnableTCGCSV     bool `mapstructure:"enable_tcgcsv"`
	EnableCardTrader bool `mapstructure:"enable_cardtrader"`
	EnableVendors    bool `mapstructure:"enable_vendors"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tcgvault/")

	// Environment variable settings. Nested keys map to underscored env
	// vars, e.g. database.url <- TCGVAULT_DATABASE_URL.
	v.SetEnvPrefix("TCGVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Keys without a meaningful default still need registering so that
	// AutomaticEnv can bind them during Unmarshal.
	v.SetDefault("database.url", "")
	v.SetDefault("cardtrader.api_key", "")
	v.SetDefault("vendors.shopify.base_url", "")

	// Catalog feed defaults
	v.SetDefault("tcgcsv.base_url", "https://tcgcsv.com/tcgplayer")

	// Marketplace defaults
	v.SetDefault("cardtrader.base_url", "https://api.cardtrader.com/api/v2")
	v.SetDefault("cardtrader.rates_url", "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/usd.min.json")
	v.SetDefault("cardtrader.rates_ttl", "1h")

	// Vendor storefront defaults
	v.SetDefault("vendors.kanzen.enabled", true)
	v.SetDefault("vendors.kanzen.base_url", "https://kanzengames.com")
	v.SetDefault("vendors.kanzen.collection_path", "/collections/gundam-singles-all")
	v.SetDefault("vendors.kanzen.currency", "cad")
	v.SetDefault("vendors.shopify.enabled", false)
	v.SetDefault("vendors.shopify.currency", "usd")

	// Scraper stage defaults
	v.SetDefault("scraper.enable_tcgcsv", true)
	v.SetDefault("scraper.enable_cardtrader", true)
	v.SetDefault("scraper.enable_vendors", true)

	// Matching defaults
	v.SetDefault("matching.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.URL == "" {
		return fmt.Errorf("database URL is required (set TCGVAULT_DATABASE_URL)")
	}

	if config.Vendors.Shopify.Enabled && config.Vendors.Shopify.BaseURL == "" {
		return fmt.Errorf("shopify vendor base URL is required when the shopify source is enabled")
	}

	return nil
}
