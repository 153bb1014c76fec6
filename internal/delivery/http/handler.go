package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tcgvault/backend/internal/domain"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog     domain.CatalogStore
	prices      domain.PriceStore
	vendors     domain.VendorPriceReader
	marketplace domain.MarketplaceStore
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog domain.CatalogStore,
	prices domain.PriceStore,
	vendors domain.VendorPriceReader,
	marketplace domain.MarketplaceStore,
) *Handler {
	return &Handler{
		catalog:     catalog,
		prices:      prices,
		vendors:     vendors,
		marketplace: marketplace,
	}
}

// pagination holds the 1-indexed page parameters parsed from the query
// string. Limit is clamped to maxPageLimit.
type pagination struct {
	Page  int
	Limit int
}

func (p pagination) offset() int { return (p.Page - 1) * p.Limit }

func parsePagination(c *gin.Context) (pagination, error) {
	p := pagination{Page: 1, Limit: defaultPageLimit}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, fmt.Errorf("%w: page must be a positive integer", domain.ErrInvalidRequest)
		}
		p.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return p, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidRequest)
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
		p.Limit = limit
	}
	return p, nil
}

// paginatedResponse is the envelope for all list endpoints.
type paginatedResponse struct {
	Data    interface{} `json:"data"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Total   int64       `json:"total"`
	HasMore bool        `json:"has_more"`
}

func paginated(p pagination, data interface{}, total int64) paginatedResponse {
	return paginatedResponse{
		Data:    data,
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		HasMore: int64(p.offset()+p.Limit) < total,
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func serverError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tcgvault-backend",
		"version": "1.0.0",
	})
}

// APIInfo describes the available endpoints.
func (h *Handler) APIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "tcgvault-backend",
		"endpoints": []string{
			"/api/v1/categories",
			"/api/v1/groups",
			"/api/v1/products",
			"/api/v1/products/:productId",
			"/api/v1/products/:productId/vendor-prices",
			"/api/v1/products/:productId/price-history",
			"/api/v1/product-extended-data",
			"/api/v1/prices/current",
			"/api/v1/vendor-prices",
			"/api/v1/marketplace-prices/:tcgPlayerId",
		},
	})
}

// ListCategories returns every category. The set is small, so no pagination.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// ListGroups returns groups, optionally filtered by category_id.
func (h *Handler) ListGroups(c *gin.Context) {
	p, err := parsePagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "category_id must be an integer")
			return
		}
		categoryID = &id
	}

	groups, total, err := h.catalog.ListGroups(c.Request.Context(), categoryID, p.offset(), p.Limit)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(p, groups, total))
}

// ListProducts returns products filtered by category_id, group_id, number,
// and/or a name search, sorted by name then product id.
func (h *Handler) ListProducts(c *gin.Context) {
	p, err := parsePagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var filter domain.ProductFilter
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "category_id must be an integer")
			return
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("group_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "group_id must be an integer")
			return
		}
		filter.GroupID = &id
	}
	filter.Number = strings.TrimSpace(c.Query("number"))
	filter.Search = strings.TrimSpace(c.Query("search"))

	products, total, err := h.catalog.ListProducts(c.Request.Context(), filter, p.offset(), p.Limit)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(p, products, total))
}

// GetProduct returns a single product by id.
func (h *Handler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		badRequest(c, "productId must be an integer")
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProductExtendedData returns extended-data entries, optionally
// filtered by product_id, sorted by product id then key.
func (h *Handler) ListProductExtendedData(c *gin.Context) {
	p, err := parsePagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var productID *int64
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "product_id must be an integer")
			return
		}
		productID = &id
	}

	entries, total, err := h.catalog.ListExtendedData(c.Request.Context(), productID, p.offset(), p.Limit)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(p, entries, total))
}

// CurrentPrices returns the current feed prices for a comma-separated
// product_ids list (capped at maxPageLimit ids).
func (h *Handler) CurrentPrices(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("product_ids"))
	if raw == "" {
		badRequest(c, "product_ids is required")
		return
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxPageLimit {
		badRequest(c, "too many product_ids")
		return
	}
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			badRequest(c, "product_ids must be a comma-separated list of integers")
			return
		}
		ids = append(ids, id)
	}

	prices, err := h.prices.CurrentPrices(c.Request.Context(), ids)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prices})
}

// PriceHistory returns feed price history for one product, optionally
// bounded by a start_date (ISO date or datetime).
func (h *Handler) PriceHistory(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		badRequest(c, "productId must be an integer")
		return
	}

	var since time.Time
	if raw := c.Query("start_date"); raw != "" {
		since, err = parseDate(raw)
		if err != nil {
			badRequest(c, "start_date must be an ISO date or datetime")
			return
		}
	}

	history, err := h.prices.PriceHistory(c.Request.Context(), productID, since)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": history})
}

// VendorPricesForProduct returns all reconciled vendor listings that
// resolved to the given product.
func (h *Handler) VendorPricesForProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		badRequest(c, "productId must be an integer")
		return
	}

	listings, err := h.vendors.VendorPricesForProduct(c.Request.Context(), productID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// ListVendorPrices returns vendor listings, optionally filtered to one
// vendor and/or to listings that resolved to a product.
func (h *Handler) ListVendorPrices(c *gin.Context) {
	p, err := parsePagination(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	vendor := strings.TrimSpace(c.Query("vendor"))
	matchedOnly := false
	if raw := c.Query("matched_only"); raw != "" {
		matchedOnly, err = strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "matched_only must be a boolean")
			return
		}
	}

	listings, total, err := h.vendors.ListVendorPrices(c.Request.Context(), vendor, matchedOnly, p.offset(), p.Limit)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(p, listings, total))
}

// MarketplacePrices returns marketplace prices for the blueprint(s) linked
// to the given TCGplayer product id.
func (h *Handler) MarketplacePrices(c *gin.Context) {
	tcgPlayerID, err := strconv.ParseInt(c.Param("tcgPlayerId"), 10, 64)
	if err != nil {
		badRequest(c, "tcgPlayerId must be an integer")
		return
	}

	prices, err := h.marketplace.MarketplacePricesForTCGPlayerID(c.Request.Context(), tcgPlayerID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prices})
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}
