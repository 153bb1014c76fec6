package usecase

import (
	"testing"

	"github.com/tcgvault/backend/internal/domain"
)

func TestExtract(t *testing.T) {
	var e TitleMetadataExtractor

	t.Run("strict code pattern wins over loose pattern", func(t *testing.T) {
		meta := e.Extract("Char Aznable (HG Promo) GD01-118 [Gundam Starter]")
		if meta.Number != "GD01-118" {
			t.Errorf("Number = %q, want GD01-118", meta.Number)
		}
	})

	t.Run("loose pattern used when strict absent", func(t *testing.T) {
		meta := e.Extract("Promo Card ST-001 [Starter Deck]")
		if meta.Number != "ST-001" {
			t.Errorf("Number = %q, want ST-001", meta.Number)
		}
	})

	t.Run("first occurrence wins", func(t *testing.T) {
		meta := e.Extract("GD01-118 reprint of GD02-042")
		if meta.Number != "GD01-118" {
			t.Errorf("Number = %q, want GD01-118", meta.Number)
		}
	})

	t.Run("no code yields empty number", func(t *testing.T) {
		meta := e.Extract("Random Promo Card")
		if meta.Number != "" {
			t.Errorf("Number = %q, want empty", meta.Number)
		}
	})

	t.Run("first bracket group trimmed", func(t *testing.T) {
		meta := e.Extract("Card GD01-118 [ Gundam Starter ] [Other]")
		if meta.GroupLabel != "Gundam Starter" {
			t.Errorf("GroupLabel = %q, want %q", meta.GroupLabel, "Gundam Starter")
		}
	})

	t.Run("holofoil checked before foil", func(t *testing.T) {
		meta := e.Extract("Card GD01-118 Holofoil")
		if meta.RarityHint != domain.RarityHintHolofoil {
			t.Errorf("RarityHint = %q, want holofoil", meta.RarityHint)
		}
	})

	t.Run("foil hint case insensitive", func(t *testing.T) {
		meta := e.Extract("Card GD01-118 FOIL")
		if meta.RarityHint != domain.RarityHintFoil {
			t.Errorf("RarityHint = %q, want foil", meta.RarityHint)
		}
	})

	t.Run("extraction is idempotent", func(t *testing.T) {
		title := "Char Aznable (LR+) GD01-118 [Gundam Starter] Foil"
		first := e.Extract(title)
		second := e.Extract(title)
		if first != second {
			t.Errorf("Extract not idempotent: %+v != %+v", first, second)
		}
	})
}

func TestParseGroupField(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		wantAbbrev string
		wantName   string
	}{
		{"structured label", "GD01 Booster: Newtype Risings", "GD01", "Newtype Risings"},
		{"no colon", "GD01 Booster", "GD01", ""},
		{"empty", "", "", ""},
		{"colon only", ":", "", ""},
		{"padded name", "ST02 Starter:  Wings of Advance ", "ST02", "Wings of Advance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abbrev, name := ParseGroupField(tt.field)
			if abbrev != tt.wantAbbrev || name != tt.wantName {
				t.Errorf("ParseGroupField(%q) = (%q, %q), want (%q, %q)",
					tt.field, abbrev, name, tt.wantAbbrev, tt.wantName)
			}
		})
	}
}

func TestExtractWithGroupField(t *testing.T) {
	var e TitleMetadataExtractor

	meta := e.ExtractWithGroupField("Char Aznable GD01-118", "GD01 Booster: Newtype Risings")
	if meta.Number != "GD01-118" {
		t.Errorf("Number = %q, want GD01-118", meta.Number)
	}
	if meta.Abbreviation != "GD01" {
		t.Errorf("Abbreviation = %q, want GD01", meta.Abbreviation)
	}
	if meta.GroupName != "Newtype Risings" {
		t.Errorf("GroupName = %q, want %q", meta.GroupName, "Newtype Risings")
	}
}
