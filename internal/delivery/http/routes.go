package http

import (
	"github.com/gin-gonic/gin"
	"github.com/tcgvault/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("", handler.APIInfo)

		v1.GET("/categories", handler.ListCategories)
		v1.GET("/groups", handler.ListGroups)

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:productId", handler.GetProduct)
			products.GET("/:productId/vendor-prices", handler.VendorPricesForProduct)
			products.GET("/:productId/price-history", handler.PriceHistory)
		}

		v1.GET("/product-extended-data", handler.ListProductExtendedData)
		v1.GET("/prices/current", handler.CurrentPrices)
		v1.GET("/vendor-prices", handler.ListVendorPrices)
		v1.GET("/marketplace-prices/:tcgPlayerId", handler.MarketplacePrices)
	}

	return router
}
