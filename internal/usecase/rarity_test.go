package usecase

import "testing"

func TestRarityNormalize(t *testing.T) {
	var n RarityNormalizer

	tests := []struct {
		name      string
		raw       string
		wantBase  string
		wantPlus  int
	}{
		{"legendary rare synonym", "Legendary Rare", "lr", 0},
		{"legend rare synonym", "legend rare", "lr", 0},
		{"short form with plus", "LR+", "lr", 1},
		{"double plus", "lr++", "lr", 2},
		{"rare", "Rare", "r", 0},
		{"uncommon", "UNCOMMON", "u", 0},
		{"common", "common", "c", 0},
		{"unknown base passes through", "Secret Rare", "secret rare", 0},
		{"whitespace trimmed", "  rare  ", "r", 0},
		{"empty", "", "", 0},
		{"plus only", "+", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, plus := n.Normalize(tt.raw)
			if base != tt.wantBase || plus != tt.wantPlus {
				t.Errorf("Normalize(%q) = (%q, %d), want (%q, %d)", tt.raw, base, plus, tt.wantBase, tt.wantPlus)
			}
		})
	}
}

func TestRarityEqual(t *testing.T) {
	var n RarityNormalizer

	t.Run("plus counts align across synonyms", func(t *testing.T) {
		if !n.Equal("LR+", "Legendary Rare+") {
			t.Error(`Equal("LR+", "Legendary Rare+") = false, want true`)
		}
	})

	t.Run("plus count mismatch", func(t *testing.T) {
		if n.Equal("LR+", "Legendary Rare") {
			t.Error(`Equal("LR+", "Legendary Rare") = true, want false`)
		}
	})

	t.Run("empty never equals empty", func(t *testing.T) {
		if n.Equal("", "") {
			t.Error(`Equal("", "") = true, want false`)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		if !n.Equal("RARE", "rare") {
			t.Error(`Equal("RARE", "rare") = false, want true`)
		}
	})
}

func TestRaritySortKey(t *testing.T) {
	var n RarityNormalizer

	t.Run("rarest tier sorts first", func(t *testing.T) {
		if !n.SortKey("LR").Less(n.SortKey("R")) {
			t.Error("LR should sort before R")
		}
		if !n.SortKey("R").Less(n.SortKey("U")) {
			t.Error("R should sort before U")
		}
		if !n.SortKey("U").Less(n.SortKey("C")) {
			t.Error("U should sort before C")
		}
	})

	t.Run("more plus signs sort first within a base", func(t *testing.T) {
		if !n.SortKey("lr++").Less(n.SortKey("lr+")) {
			t.Error("lr++ should sort before lr+")
		}
		if !n.SortKey("lr+").Less(n.SortKey("lr")) {
			t.Error("lr+ should sort before lr")
		}
	})

	t.Run("unknown bases sort last", func(t *testing.T) {
		if !n.SortKey("c").Less(n.SortKey("promo")) {
			t.Error("known tier should sort before unknown base")
		}
	})
}
