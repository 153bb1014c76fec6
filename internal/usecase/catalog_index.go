package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/tcgvault/backend/internal/domain"
)

// CatalogIndex holds the lookup structures for one reconciliation batch:
// product code -> candidate products, and normalized group name -> group
// ids. It is built once per batch before any matching begins and is
// read-only afterwards.
type CatalogIndex struct {
	byNumber       map[string][]domain.CatalogProduct
	groupIDsByName map[string]map[int64]struct{}
}

// NewCatalogIndex indexes the given products and groups. Number keys are
// uppercased, group name keys are lowercased and trimmed.
func NewCatalogIndex(products []domain.CatalogProduct, groups []domain.CatalogGroup) *CatalogIndex {
	ix := &CatalogIndex{
		byNumber:       make(map[string][]domain.CatalogProduct),
		groupIDsByName: make(map[string]map[int64]struct{}),
	}
	for _, p := range products {
		if p.Number == "" {
			continue
		}
		key := strings.ToUpper(p.Number)
		ix.byNumber[key] = append(ix.byNumber[key], p)
	}
	for _, g := range groups {
		key := normalizeGroupName(g.Name)
		if key == "" {
			continue
		}
		ids, ok := ix.groupIDsByName[key]
		if !ok {
			ids = make(map[int64]struct{})
			ix.groupIDsByName[key] = ids
		}
		ids[g.GroupID] = struct{}{}
	}
	return ix
}

// BuildCatalogIndex fetches the catalog rows referenced by a batch of
// listings and indexes them. One round trip per entity kind regardless of
// batch size; the reader chunks identifier lists internally.
func BuildCatalogIndex(ctx context.Context, reader domain.CatalogReader, numbers, groupNames []string) (*CatalogIndex, error) {
	products, err := reader.ProductsByNumber(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("fetching products for index: %w", err)
	}
	groups, err := reader.GroupsByName(ctx, groupNames)
	if err != nil {
		return nil, fmt.Errorf("fetching groups for index: %w", err)
	}
	return NewCatalogIndex(products, groups), nil
}

// CandidatesForNumber returns the products sharing a product code.
// Lookup is case-insensitive.
func (ix *CatalogIndex) CandidatesForNumber(number string) []domain.CatalogProduct {
	return ix.byNumber[strings.ToUpper(number)]
}

// GroupIDsForLabel resolves an exact group label to its group ids.
func (ix *CatalogIndex) GroupIDsForLabel(label string) map[int64]struct{} {
	return ix.groupIDsByName[normalizeGroupName(label)]
}

// GroupIDsForAbbreviation resolves a set abbreviation by prefix match
// against every indexed group name. Performed lazily because only some
// vendors supply abbreviation hints.
func (ix *CatalogIndex) GroupIDsForAbbreviation(abbrev string) map[int64]struct{} {
	prefix := normalizeGroupName(abbrev)
	if prefix == "" {
		return nil
	}
	var out map[int64]struct{}
	for name, ids := range ix.groupIDsByName {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if out == nil {
			out = make(map[int64]struct{})
		}
		for id := range ids {
			out[id] = struct{}{}
		}
	}
	return out
}

// GroupIDsForBareName resolves a bare group name against the part of each
// indexed name after its colon ("GD01 Booster: Gundam Wing" matches the
// bare name "Gundam Wing").
func (ix *CatalogIndex) GroupIDsForBareName(name string) map[int64]struct{} {
	want := normalizeGroupName(name)
	if want == "" {
		return nil
	}
	var out map[int64]struct{}
	for indexed, ids := range ix.groupIDsByName {
		_, after, found := strings.Cut(indexed, ":")
		if !found || strings.TrimSpace(after) != want {
			continue
		}
		if out == nil {
			out = make(map[int64]struct{})
		}
		for id := range ids {
			out[id] = struct{}{}
		}
	}
	return out
}

func normalizeGroupName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
