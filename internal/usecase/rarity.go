package usecase

import "strings"

// raritySynonyms maps spelled-out rarity tiers to their canonical base.
var raritySynonyms = map[string]string{
	"legend rare":    "lr",
	"legendary rare": "lr",
	"rare":           "r",
	"uncommon":       "u",
	"common":         "c",
}

// rarityPriority ranks canonical bases rarest-first. Used only as the
// final tie-break when nothing else disambiguates; it is a stable fallback,
// not a correctness guarantee.
var rarityPriority = []string{"lr", "r", "u", "c"}

var rarityPriorityIndex = func() map[string]int {
	m := make(map[string]int, len(rarityPriority))
	for i, base := range rarityPriority {
		m[base] = i
	}
	return m
}()

// RarityNormalizer canonicalizes free-text rarity labels into a comparable
// (base tier, plus count) form. "LR+" and "Legendary Rare+" normalize
// equal; the trailing plus signs denote sub-variants and are counted.
type RarityNormalizer struct{}

// Normalize returns the canonical base tier and the number of trailing '+'
// characters. The base is "" when the input is empty or whitespace.
func (RarityNormalizer) Normalize(raw string) (base string, plusCount int) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for strings.HasSuffix(s, "+") {
		s = strings.TrimSuffix(s, "+")
		plusCount++
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", plusCount
	}
	if canonical, ok := raritySynonyms[s]; ok {
		return canonical, plusCount
	}
	return s, plusCount
}

// Equal reports whether two rarity labels normalize to the same non-empty
// base with the same plus count.
func (n RarityNormalizer) Equal(a, b string) bool {
	baseA, plusA := n.Normalize(a)
	baseB, plusB := n.Normalize(b)
	return baseA != "" && baseA == baseB && plusA == plusB
}

// RarityKey orders rarity labels rarest-first: lower Priority first, then
// more plus signs first within the same base.
type RarityKey struct {
	Priority int
	PlusRank int
}

// SortKey returns the fallback ordering key for a rarity label. Unknown
// bases sort after every known tier.
func (n RarityNormalizer) SortKey(raw string) RarityKey {
	base, plusCount := n.Normalize(raw)
	priority, ok := rarityPriorityIndex[base]
	if !ok {
		priority = len(rarityPriority)
	}
	return RarityKey{Priority: priority, PlusRank: -plusCount}
}

// Less reports whether k orders before other.
func (k RarityKey) Less(other RarityKey) bool {
	if k.Priority != other.Priority {
		return k.Priority < other.Priority
	}
	return k.PlusRank < other.PlusRank
}
