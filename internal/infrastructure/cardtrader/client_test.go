package cardtrader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tcgvault/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "https://api.example.com/api/v2")
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)

	client, err := NewClient("token", "https://api.example.com/api/v2")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestGames_UnwrapsArrayEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"array":[{"id":22,"name":"gundam","display_name":"Gundam Card Game"}]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-token", server.URL)
	require.NoError(t, err)

	games, err := client.Games(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, int64(22), games[0].ID)
	assert.Equal(t, "Gundam Card Game", games[0].DisplayName)
}

func TestExpansions_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/expansions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":100,"game_id":22,"code":"gd01","name":"Newtype Risings"},
			{"id":101,"game_id":5,"code":"xx","name":"Other Game Set"}
		]`))
	}))
	defer server.Close()

	client, err := NewClient("test-token", server.URL)
	require.NoError(t, err)

	expansions, err := client.Expansions(context.Background())
	require.NoError(t, err)
	require.Len(t, expansions, 2)
	assert.Equal(t, "gd01", expansions[0].Code)
	assert.Equal(t, int64(22), expansions[0].GameID)
}

func TestBlueprints_FlattensFixedProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blueprints/export", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("expansion_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":9001,"name":"Char Aznable","game_id":22,"category_id":1,"version":"","tcg_player_id":1001,
			 "fixed_properties":{"collector_number":"GD01-118","mtg_rarity":"LR"}}
		]`))
	}))
	defer server.Close()

	client, err := NewClient("test-token", server.URL)
	require.NoError(t, err)

	blueprints, err := client.Blueprints(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, blueprints, 1)
	assert.Equal(t, int64(9001), blueprints[0].ID)
	assert.Equal(t, int64(100), blueprints[0].ExpansionID)
	assert.Equal(t, "GD01-118", blueprints[0].CollectorNumber)
	assert.Equal(t, "LR", blueprints[0].Rarity)
	require.NotNil(t, blueprints[0].TCGPlayerID)
	assert.Equal(t, int64(1001), *blueprints[0].TCGPlayerID)
}

func TestMarketplaceProducts_KeyedByBlueprintID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/marketplace/products", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("expansion_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"9001":[
			{"id":1,"price_cents":1500,"price_currency":"EUR","quantity":2,"user":{"id":7,"username":"seller1","country_code":"IT"}},
			{"id":2,"price_cents":900,"price_currency":"EUR","quantity":1,"user":{"id":8,"username":"seller2","country_code":"DE"}}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-token", server.URL)
	require.NoError(t, err)

	listings, err := client.MarketplaceProducts(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, listings["9001"], 2)
	require.NotNil(t, listings["9001"][1].PriceCents)
	assert.Equal(t, int64(900), *listings["9001"][1].PriceCents)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient("bad-token", server.URL)
	require.NoError(t, err)

	_, err = client.Games(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestLowestPriceListing(t *testing.T) {
	t.Run("picks cheapest", func(t *testing.T) {
		listings := []RawListing{
			{ID: 1, PriceCents: int64Ptr(1500)},
			{ID: 2, PriceCents: int64Ptr(900)},
			{ID: 3, PriceCents: int64Ptr(2000)},
		}
		best, ok := LowestPriceListing(listings)
		require.True(t, ok)
		assert.Equal(t, int64(2), best.ID)
	})

	t.Run("nested price cents", func(t *testing.T) {
		cheap := RawListing{ID: 2}
		cheap.Price.Cents = int64Ptr(500)
		listings := []RawListing{
			{ID: 1, PriceCents: int64Ptr(1500)},
			cheap,
		}
		best, ok := LowestPriceListing(listings)
		require.True(t, ok)
		assert.Equal(t, int64(2), best.ID)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := LowestPriceListing(nil)
		assert.False(t, ok)
	})
}

func TestMapListing(t *testing.T) {
	listing := RawListing{ID: 42, PriceCents: int64Ptr(1410), PriceCurrency: "CAD", Quantity: 3}
	listing.Expansion.ID = 100
	listing.Expansion.Code = "gd01"
	listing.Expansion.NameEn = "Newtype Risings"
	listing.User.Username = "seller1"
	listing.User.CountryCode = "CA"

	rates := map[string]float64{"cad": 1.41}
	fetchedAt := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)

	price := MapListing(listing, 9001, int64Ptr(1001), rates, fetchedAt)

	assert.Equal(t, int64(9001), price.BlueprintID)
	assert.Equal(t, int64(42), price.ListingID)
	require.NotNil(t, price.TCGPlayerID)
	assert.Equal(t, int64(1001), *price.TCGPlayerID)
	require.NotNil(t, price.PriceValue)
	assert.Equal(t, 14.1, *price.PriceValue)
	require.NotNil(t, price.PriceUSD)
	assert.InDelta(t, 10.0, *price.PriceUSD, 0.000001)
	require.NotNil(t, price.ConversionRate)
	assert.Equal(t, 1.41, *price.ConversionRate)
	assert.Equal(t, "Newtype Risings", price.ExpansionName)
	assert.Equal(t, "seller1", price.SellerUsername)
	assert.Equal(t, fetchedAt, price.FetchedAt)
	assert.NotEmpty(t, price.Raw)
}
