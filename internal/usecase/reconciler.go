package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tcgvault/backend/internal/domain"
)

// VendorPriceReconciler orchestrates one reconciliation batch: extract
// metadata from every raw listing, build one catalog index for the whole
// batch, match each listing, and deduplicate before handoff to
// persistence. It performs no persistence itself and no side effects
// beyond logging; per-run state lives on the instance, never in globals.
type VendorPriceReconciler struct {
	catalog   domain.CatalogReader
	extractor TitleMetadataExtractor
	matcher   *ProductMatcher
}

// NewVendorPriceReconciler creates a reconciler reading catalog data
// through the given reader.
func NewVendorPriceReconciler(catalog domain.CatalogReader, config MatcherConfig) *VendorPriceReconciler {
	return &VendorPriceReconciler{
		catalog: catalog,
		matcher: NewProductMatcher(config),
	}
}

// Reconcile annotates raw listings with extracted metadata and resolved
// product ids. The catalog is fetched exactly once for the batch — a hard
// barrier before any matching begins — and listings are then processed
// sequentially so diagnostic log ordering is deterministic. Listings
// sharing a (vendor, title) key are collapsed to the last occurrence.
func (r *VendorPriceReconciler) Reconcile(ctx context.Context, listings []domain.VendorListing) ([]domain.VendorListing, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	for i := range listings {
		meta := r.extractor.Extract(listings[i].Title)
		// Source-supplied structured group hints survive extraction.
		meta.Abbreviation = listings[i].Metadata.Abbreviation
		meta.GroupName = listings[i].Metadata.GroupName
		listings[i].Metadata = meta
	}

	numbers, groupNames := collectIndexKeys(listings)
	index, err := BuildCatalogIndex(ctx, r.catalog, numbers, groupNames)
	if err != nil {
		return nil, fmt.Errorf("building catalog index: %w", err)
	}

	matched := 0
	for i := range listings {
		listings[i].ProductID = r.matcher.Match(listings[i], listings[i].Metadata, index)
		if listings[i].ProductID != nil {
			matched++
		}
	}
	log.Printf("[RECONCILE] matched %d/%d vendor listings", matched, len(listings))

	return dedupeByKey(listings), nil
}

// collectIndexKeys gathers the distinct product codes and group name
// variants referenced across the batch, so the index can be built with one
// fetch per entity kind.
func collectIndexKeys(listings []domain.VendorListing) (numbers, groupNames []string) {
	seenNumbers := make(map[string]struct{})
	seenNames := make(map[string]struct{})
	addName := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if _, ok := seenNames[key]; ok {
			return
		}
		seenNames[key] = struct{}{}
		groupNames = append(groupNames, name)
	}

	for _, l := range listings {
		if l.Metadata.Number != "" {
			key := strings.ToUpper(l.Metadata.Number)
			if _, ok := seenNumbers[key]; !ok {
				seenNumbers[key] = struct{}{}
				numbers = append(numbers, key)
			}
		}
		addName(l.Metadata.GroupLabel)
		addName(l.Metadata.Abbreviation)
		addName(l.Metadata.GroupName)
	}
	return numbers, groupNames
}

// dedupeByKey collapses listings sharing a (vendor, title) key, keeping
// the values of the last occurrence.
func dedupeByKey(listings []domain.VendorListing) []domain.VendorListing {
	position := make(map[domain.ListingKey]int, len(listings))
	out := make([]domain.VendorListing, 0, len(listings))
	for _, l := range listings {
		if i, ok := position[l.Key()]; ok {
			out[i] = l
			continue
		}
		position[l.Key()] = len(out)
		out = append(out, l)
	}
	return out
}
