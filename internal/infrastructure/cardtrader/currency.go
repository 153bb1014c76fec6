package cardtrader

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tcgvault/backend/internal/domain"
)

const ratesCacheKey = "cardtrader:currency_rates"

// RatesProvider fetches USD-based currency conversion rates and caches them
// so one rate table serves a whole scrape run (and anything else within the
// TTL window).
type RatesProvider struct {
	rest  *resty.Client
	cache domain.CacheRepository
	ttl   time.Duration
}

// NewRatesProvider creates a provider against a currency rates endpoint
// returning `{"usd": {"cad": 1.41, ...}}` (units per USD).
func NewRatesProvider(ratesURL string, cache domain.CacheRepository, ttl time.Duration) *RatesProvider {
	rest := resty.New().
		SetBaseURL(ratesURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &RatesProvider{rest: rest, cache: cache, ttl: ttl}
}

type ratesPayload struct {
	USD map[string]float64 `json:"usd"`
}

// Rates returns the current rate table, serving from cache when fresh. A
// fetch failure returns an empty table rather than an error: conversion is
// best-effort and the scrape should proceed with USD values unset.
func (p *RatesProvider) Rates(ctx context.Context) map[string]float64 {
	if cached, err := p.cache.Get(ctx, ratesCacheKey); err == nil {
		if rates, ok := cached.(map[string]float64); ok {
			return rates
		}
	}

	var payload ratesPayload
	resp, err := p.rest.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("")
	if err != nil {
		log.Printf("[CARDTRADER] Could not fetch currency conversion rates: %v", err)
		return map[string]float64{}
	}
	if resp.IsError() {
		log.Printf("[CARDTRADER] Could not fetch currency conversion rates: status %d", resp.StatusCode())
		return map[string]float64{}
	}

	rates := make(map[string]float64, len(payload.USD))
	for code, rate := range payload.USD {
		if rate == 0 {
			continue
		}
		rates[strings.ToLower(code)] = rate
	}

	if err := p.cache.Set(ctx, ratesCacheKey, rates, p.ttl); err != nil {
		log.Printf("[CARDTRADER] Failed to cache currency rates: %v", err)
	}

	log.Printf("[CARDTRADER] Loaded %d currency conversion rates", len(rates))
	return rates
}

// ConvertToUSD converts a price in minor units (cents) to USD using a
// units-per-USD rate table. Returns (usd, rate); both nil when the price or
// currency is missing or no rate is known.
func ConvertToUSD(priceCents *int64, currency string, rates map[string]float64) (*float64, *float64) {
	if priceCents == nil || currency == "" {
		return nil, nil
	}

	key := strings.ToLower(currency)
	if key == "usd" {
		usd := roundTo(float64(*priceCents)/100, 6)
		rate := 1.0
		return &usd, &rate
	}

	rate, ok := rates[key]
	if !ok || rate == 0 {
		return nil, nil
	}

	usd := roundTo(float64(*priceCents)/100/rate, 6)
	return &usd, &rate
}

// ConvertValueToUSD converts a major-unit price (e.g. 12.50 CAD) to USD
// using the same units-per-USD rate table. Returns nil when the price or
// currency is missing or no rate is known.
func ConvertValueToUSD(value *float64, currency string, rates map[string]float64) *float64 {
	if value == nil || currency == "" {
		return nil
	}

	key := strings.ToLower(currency)
	if key == "usd" {
		usd := roundTo(*value, 6)
		return &usd
	}

	rate, ok := rates[key]
	if !ok || rate == 0 {
		return nil
	}

	usd := roundTo(*value/rate, 6)
	return &usd
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
