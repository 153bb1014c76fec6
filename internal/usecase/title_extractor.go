package usecase

import (
	"regexp"
	"strings"

	"github.com/tcgvault/backend/internal/domain"
)

// Compiled once at package level; extraction runs per listing.
var (
	// Strict product code, e.g. "GD01-118".
	strictNumberRegex = regexp.MustCompile(`\b([A-Za-z]{2}\d{2}-\d{3})\b`)
	// Looser fallback, e.g. "ST-001" or "P-042".
	looseNumberRegex = regexp.MustCompile(`\b([A-Za-z]{1,4}-\d{3})\b`)
	// First [...]-bracketed substring in the title.
	bracketGroupRegex = regexp.MustCompile(`\[([^\]]+)\]`)
)

// TitleMetadataExtractor parses free-text vendor titles into structured
// matching hints. Extraction is total: a title that matches nothing yields
// a zero-valued TitleMetadata, never an error.
type TitleMetadataExtractor struct{}

// Extract derives number, group label, and rarity hint from a raw title.
// Only the first occurrence of each pattern is used, and the strict code
// pattern wins over the loose one.
func (TitleMetadataExtractor) Extract(title string) domain.TitleMetadata {
	var meta domain.TitleMetadata

	if m := strictNumberRegex.FindStringSubmatch(title); m != nil {
		meta.Number = m[1]
	} else if m := looseNumberRegex.FindStringSubmatch(title); m != nil {
		meta.Number = m[1]
	}

	if m := bracketGroupRegex.FindStringSubmatch(title); m != nil {
		meta.GroupLabel = strings.TrimSpace(m[1])
	}

	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, domain.RarityHintHolofoil):
		meta.RarityHint = domain.RarityHintHolofoil
	case strings.Contains(lower, domain.RarityHintFoil):
		meta.RarityHint = domain.RarityHintFoil
	}

	return meta
}

// ExtractWithGroupField extracts from the title, then overlays hints parsed
// from a discrete group field for vendors that supply one (Shopify-style
// feeds expose "{abbrev} {type}: {name}" as the collection name rather
// than embedding it in the title).
func (e TitleMetadataExtractor) ExtractWithGroupField(title, groupField string) domain.TitleMetadata {
	meta := e.Extract(title)
	abbrev, name := ParseGroupField(groupField)
	meta.Abbreviation = abbrev
	meta.GroupName = name
	return meta
}

// ParseGroupField splits a structured group label on its first colon: the
// first whitespace token before the colon is the set abbreviation, the
// trimmed remainder after it is the bare group name. Either part may come
// back empty.
func ParseGroupField(field string) (abbreviation, name string) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", ""
	}
	before, after, found := strings.Cut(field, ":")
	if tokens := strings.Fields(before); len(tokens) > 0 {
		abbreviation = tokens[0]
	}
	if found {
		name = strings.TrimSpace(after)
	}
	return abbreviation, name
}
