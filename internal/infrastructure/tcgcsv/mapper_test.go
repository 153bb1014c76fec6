package tcgcsv

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"fractional with Z", "2025-06-10T12:30:45.123456Z", time.Date(2025, 6, 10, 12, 30, 45, 123456000, time.UTC)},
		{"seconds with Z", "2025-06-10T12:30:45Z", time.Date(2025, 6, 10, 12, 30, 45, 0, time.UTC)},
		{"no zone", "2025-06-10T12:30:45", time.Date(2025, 6, 10, 12, 30, 45, 0, time.UTC)},
		{"space separator", "2025-06-10 12:30:45", time.Date(2025, 6, 10, 12, 30, 45, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "not-a-date", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTimestamp(tt.input)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestMapProducts_SkipsMalformedRows(t *testing.T) {
	results := []json.RawMessage{
		json.RawMessage(`{"productId":1,"name":"Good Card","number":"GD01-001"}`),
		json.RawMessage(`"just a string"`),
	}

	products, extended := MapProducts(results, 81, 24261)

	require.Len(t, products, 1)
	assert.Equal(t, int64(1), products[0].ProductID)
	assert.Empty(t, extended)
}

func TestExtractRarity(t *testing.T) {
	t.Run("matches by name case-insensitively", func(t *testing.T) {
		entries := []rawExtendedData{
			{Name: "Number", Value: "GD01-001"},
			{Name: "RARITY", Value: " R "},
		}
		assert.Equal(t, "R", extractRarity(entries))
	})

	t.Run("matches by display name", func(t *testing.T) {
		entries := []rawExtendedData{
			{Name: "attr_x", DisplayName: "Rarity", Value: "LR"},
		}
		assert.Equal(t, "LR", extractRarity(entries))
	})

	t.Run("no rarity entry", func(t *testing.T) {
		entries := []rawExtendedData{
			{Name: "Number", Value: "GD01-001"},
		}
		assert.Equal(t, "", extractRarity(entries))
	})
}

func TestMapPrices_FallsBackToCallerProductID(t *testing.T) {
	results := []json.RawMessage{
		json.RawMessage(`{"lowPrice":1.5,"subTypeName":"Normal"}`),
	}

	prices := MapPrices(results, 777)

	require.Len(t, prices, 1)
	assert.Equal(t, int64(777), prices[0].ProductID)
}

func TestMapGroups_TrimsFields(t *testing.T) {
	results := []json.RawMessage{
		json.RawMessage(`{"groupId":5,"name":"  GD01 Booster: Newtype Risings  ","abbreviation":" GD01 "}`),
	}

	groups := MapGroups(results, 81)

	require.Len(t, groups, 1)
	assert.Equal(t, "GD01 Booster: Newtype Risings", groups[0].Name)
	assert.Equal(t, "GD01", groups[0].Abbreviation)
	assert.Equal(t, int64(81), groups[0].CategoryID)
}
