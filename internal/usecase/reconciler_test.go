package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/tcgvault/backend/internal/domain"
)

// stubCatalogReader serves canned catalog rows and records fetch counts.
type stubCatalogReader struct {
	products     []domain.CatalogProduct
	groups       []domain.CatalogGroup
	err          error
	productCalls int
	groupCalls   int
}

func (s *stubCatalogReader) ProductsByNumber(ctx context.Context, numbers []string) ([]domain.CatalogProduct, error) {
	s.productCalls++
	return s.products, s.err
}

func (s *stubCatalogReader) GroupsByName(ctx context.Context, names []string) ([]domain.CatalogGroup, error) {
	s.groupCalls++
	return s.groups, s.err
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("annotates listings with metadata and product ids", func(t *testing.T) {
		reader := &stubCatalogReader{
			products: []domain.CatalogProduct{{ProductID: 7, Number: "GD01-118", GroupID: 10, Rarity: "C"}},
			groups:   testGroups(),
		}
		r := NewVendorPriceReconciler(reader, MatcherConfig{})

		out, err := r.Reconcile(ctx, []domain.VendorListing{
			{Vendor: "kanzengames.com", Title: "Char Aznable GD01-118 [Gundam Starter]"},
			{Vendor: "kanzengames.com", Title: "Random Promo Card"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("listings = %d, want 2", len(out))
		}
		if out[0].ProductID == nil || *out[0].ProductID != 7 {
			t.Errorf("first product id = %v, want 7", out[0].ProductID)
		}
		if out[0].Metadata.Number != "GD01-118" {
			t.Errorf("first number = %q, want GD01-118", out[0].Metadata.Number)
		}
		if out[1].ProductID != nil {
			t.Errorf("second product id = %v, want nil", *out[1].ProductID)
		}
	})

	t.Run("builds the index once per batch", func(t *testing.T) {
		reader := &stubCatalogReader{}
		r := NewVendorPriceReconciler(reader, MatcherConfig{})

		_, err := r.Reconcile(ctx, []domain.VendorListing{
			{Vendor: "a", Title: "Card GD01-118"},
			{Vendor: "a", Title: "Card GD01-119"},
			{Vendor: "b", Title: "Card GD02-001"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reader.productCalls != 1 || reader.groupCalls != 1 {
			t.Errorf("reader calls = (%d, %d), want one fetch per entity kind", reader.productCalls, reader.groupCalls)
		}
	})

	t.Run("deduplicates by vendor and title keeping the last occurrence", func(t *testing.T) {
		reader := &stubCatalogReader{}
		r := NewVendorPriceReconciler(reader, MatcherConfig{})

		low, high := 1.25, 3.50
		out, err := r.Reconcile(ctx, []domain.VendorListing{
			{Vendor: "kanzengames.com", Title: "Card GD01-118", PriceSingleValue: &low},
			{Vendor: "kanzengames.com", Title: "Card GD01-118", PriceSingleValue: &high},
			{Vendor: "other.com", Title: "Card GD01-118", PriceSingleValue: &low},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("listings = %d, want 2 after dedup", len(out))
		}
		if out[0].PriceSingleValue == nil || *out[0].PriceSingleValue != high {
			t.Errorf("surviving price = %v, want the later entry's %v", out[0].PriceSingleValue, high)
		}
	})

	t.Run("source-supplied group hints survive extraction", func(t *testing.T) {
		reader := &stubCatalogReader{
			products: []domain.CatalogProduct{
				{ProductID: 1, Number: "GD01-118", GroupID: 10, Rarity: "C"},
				{ProductID: 2, Number: "GD01-118", GroupID: 20, Rarity: "C"},
			},
			groups: testGroups(),
		}
		r := NewVendorPriceReconciler(reader, MatcherConfig{})

		out, err := r.Reconcile(ctx, []domain.VendorListing{{
			Vendor:   "feedshop.example",
			Title:    "Char Aznable GD01-118",
			Metadata: domain.TitleMetadata{Abbreviation: "GD01", GroupName: "Newtype Risings"},
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].ProductID == nil || *out[0].ProductID != 2 {
			t.Errorf("product id = %v, want 2 (abbreviation narrowed)", out[0].ProductID)
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		reader := &stubCatalogReader{}
		r := NewVendorPriceReconciler(reader, MatcherConfig{})

		out, err := r.Reconcile(ctx, nil)
		if err != nil || out != nil {
			t.Errorf("Reconcile(nil) = (%v, %v), want (nil, nil)", out, err)
		}
		if reader.productCalls != 0 {
			t.Errorf("reader called %d times for empty batch, want 0", reader.productCalls)
		}
	})

	t.Run("index fetch failure aborts the batch", func(t *testing.T) {
		reader := &stubCatalogReader{err: errors.New("connection refused")}
		r := NewVendorPriceReconciler(reader, MatcherConfig{})

		_, err := r.Reconcile(ctx, []domain.VendorListing{{Vendor: "a", Title: "Card GD01-118"}})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}
