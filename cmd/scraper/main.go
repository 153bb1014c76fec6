// Package main provides the entry point for the TCGVault batch scraper.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "TCGVault batch scraper",
	Long:  "Syncs the product catalog, pulls feed and marketplace prices, and reconciles vendor storefront listings against canonical products.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
