package usecase

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/tcgvault/backend/internal/domain"
)

// Parenthesized rarity phrase in a title, e.g. "(LR+)" or "(Legendary Rare)".
var rarityPhraseRegex = regexp.MustCompile(`\(([A-Za-z0-9+\s]+)\)`)

// MatcherConfig holds configuration for the product matcher
type MatcherConfig struct {
	EnableDebugLogging bool
}

// ProductMatcher resolves one vendor listing to at most one canonical
// product id. The pipeline is an ordered list of narrowing steps over a
// working candidate set; the first step that leaves exactly one candidate
// wins, and a step whose filter would empty the set is ignored rather than
// allowed to eliminate every candidate on a bad hint.
//
// Every null-returning branch logs a distinguishable diagnostic; absence of
// a match is an expected outcome, not an error.
type ProductMatcher struct {
	rarity             RarityNormalizer
	enableDebugLogging bool
}

// NewProductMatcher creates a matcher with the given configuration
func NewProductMatcher(config MatcherConfig) *ProductMatcher {
	return &ProductMatcher{enableDebugLogging: config.EnableDebugLogging}
}

// Match returns the resolved product id for a listing, or nil when the
// listing cannot be resolved. Deterministic and side-effect-free aside
// from diagnostic logging.
func (m *ProductMatcher) Match(listing domain.VendorListing, meta domain.TitleMetadata, ix *CatalogIndex) *int64 {
	if meta.Number == "" {
		log.Printf("[MATCH] vendor match failed for %q (no product number found)", listing.Title)
		return nil
	}

	candidates := ix.CandidatesForNumber(meta.Number)
	if len(candidates) == 0 {
		log.Printf("[MATCH] no products found for number %s (title=%q)", meta.Number, listing.Title)
		return nil
	}
	if len(candidates) == 1 {
		return &candidates[0].ProductID
	}

	if m.enableDebugLogging {
		log.Printf("[MATCH] %q: %d candidates for number %s", listing.Title, len(candidates), meta.Number)
	}

	working := candidates
	working = m.narrowByGroup(working, meta, ix, listing.Title)
	if len(working) == 1 {
		return &working[0].ProductID
	}

	working = m.narrowByRarityPhrase(working, listing.Title)
	if len(working) == 1 {
		return &working[0].ProductID
	}

	if meta.RarityHint != "" {
		working = m.narrowByRarityHint(working)
		if len(working) == 1 {
			return &working[0].ProductID
		}
	}

	return m.fallback(working, meta, listing.Title)
}

// narrowByGroup filters candidates to the group ids resolved from the
// listing's group hint. Resolution strategies are tried in order — exact
// label, abbreviation prefix, bare name after colon — and the first that
// yields a non-empty id set is used. A filter that would empty the set is
// skipped: an unmatched hint must not eliminate every candidate.
func (m *ProductMatcher) narrowByGroup(candidates []domain.CatalogProduct, meta domain.TitleMetadata, ix *CatalogIndex, title string) []domain.CatalogProduct {
	groupIDs, hint := m.resolveGroupIDs(meta, ix)
	if hint == "" {
		return candidates
	}
	if len(groupIDs) == 0 {
		log.Printf("[MATCH] group %q not found in catalog (title=%q)", hint, title)
		return candidates
	}

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if _, ok := groupIDs[c.GroupID]; ok {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		log.Printf("[MATCH] group %q matched zero candidates, ignoring hint (title=%q)", hint, title)
		return candidates
	}
	return filtered
}

// resolveGroupIDs returns the candidate group id set for the listing's
// group hint plus the hint text used (for diagnostics). The hint is ""
// when the listing carries no group signal at all.
func (m *ProductMatcher) resolveGroupIDs(meta domain.TitleMetadata, ix *CatalogIndex) (map[int64]struct{}, string) {
	if meta.GroupLabel != "" {
		if ids := ix.GroupIDsForLabel(meta.GroupLabel); len(ids) > 0 {
			return ids, meta.GroupLabel
		}
	}
	if meta.Abbreviation != "" {
		if ids := ix.GroupIDsForAbbreviation(meta.Abbreviation); len(ids) > 0 {
			return ids, meta.Abbreviation
		}
	}
	if meta.GroupName != "" {
		if ids := ix.GroupIDsForBareName(meta.GroupName); len(ids) > 0 {
			return ids, meta.GroupName
		}
	}
	switch {
	case meta.GroupLabel != "":
		return nil, meta.GroupLabel
	case meta.Abbreviation != "":
		return nil, meta.Abbreviation
	case meta.GroupName != "":
		return nil, meta.GroupName
	}
	return nil, ""
}

// narrowByRarityPhrase filters candidates whose rarity normalizes equal to
// a parenthesized phrase in the title, when one exists.
func (m *ProductMatcher) narrowByRarityPhrase(candidates []domain.CatalogProduct, title string) []domain.CatalogProduct {
	phraseMatch := rarityPhraseRegex.FindStringSubmatch(title)
	if phraseMatch == nil {
		return candidates
	}
	phrase := strings.TrimSpace(phraseMatch[1])

	filtered := candidates[:0:0]
	for _, c := range candidates {
		if m.rarity.Equal(c.Rarity, phrase) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

// narrowByRarityHint filters candidates consistent with a foil/holofoil
// hint: rarity text containing "foil" or ending with '+'. Both hint values
// use the same predicate.
func (m *ProductMatcher) narrowByRarityHint(candidates []domain.CatalogProduct) []domain.CatalogProduct {
	filtered := candidates[:0:0]
	for _, c := range candidates {
		r := strings.ToLower(c.Rarity)
		if r == "" {
			continue
		}
		if strings.Contains(r, "foil") || strings.HasSuffix(r, "+") {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

// fallback picks deterministically among genuinely ambiguous candidates by
// sorting rarest-first. This is an explicit, stable default so the
// pipeline always terminates with a single choice or an explicit miss.
func (m *ProductMatcher) fallback(candidates []domain.CatalogProduct, meta domain.TitleMetadata, title string) *int64 {
	if len(candidates) == 0 {
		// Should not occur: the code-lookup stage guards against an
		// empty set and narrowing never empties it.
		log.Printf("[MATCH] unable to resolve %q (number=%s, group=%s) after rarity fallback",
			title, meta.Number, meta.GroupLabel)
		return nil
	}
	if len(candidates) == 1 {
		return &candidates[0].ProductID
	}

	sorted := make([]domain.CatalogProduct, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return m.rarity.SortKey(sorted[i].Rarity).Less(m.rarity.SortKey(sorted[j].Rarity))
	})

	// Fallback resolutions are best-effort picks, not verified matches,
	// so they are always logged for auditing.
	log.Printf("[MATCH] resolved %q via rarity fallback among %d candidates (number=%s, picked product %d, rarity=%q)",
		title, len(sorted), meta.Number, sorted[0].ProductID, sorted[0].Rarity)
	return &sorted[0].ProductID
}
