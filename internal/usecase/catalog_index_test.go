package usecase

import (
	"context"
	"testing"

	"github.com/tcgvault/backend/internal/domain"
)

func testGroups() []domain.CatalogGroup {
	return []domain.CatalogGroup{
		{GroupID: 10, Name: "Gundam Starter"},
		{GroupID: 20, Name: "GD01 Booster: Newtype Risings"},
		{GroupID: 30, Name: "GD02 Booster: Zeon Rising"},
	}
}

func TestCatalogIndexNumbers(t *testing.T) {
	ix := NewCatalogIndex([]domain.CatalogProduct{
		{ProductID: 1, Number: "gd01-118", GroupID: 10},
		{ProductID: 2, Number: "GD01-118", GroupID: 20},
		{ProductID: 3, Number: "GD02-001", GroupID: 30},
	}, nil)

	t.Run("lookup is case insensitive", func(t *testing.T) {
		got := ix.CandidatesForNumber("Gd01-118")
		if len(got) != 2 {
			t.Fatalf("candidates = %d, want 2", len(got))
		}
	})

	t.Run("unknown number yields no candidates", func(t *testing.T) {
		if got := ix.CandidatesForNumber("ZZ99-999"); len(got) != 0 {
			t.Errorf("candidates = %d, want 0", len(got))
		}
	})

	t.Run("products without a number are not indexed", func(t *testing.T) {
		ix := NewCatalogIndex([]domain.CatalogProduct{{ProductID: 4}}, nil)
		if got := ix.CandidatesForNumber(""); len(got) != 0 {
			t.Errorf("candidates = %d, want 0", len(got))
		}
	})
}

func TestCatalogIndexGroups(t *testing.T) {
	ix := NewCatalogIndex(nil, testGroups())

	t.Run("exact label lookup is normalized", func(t *testing.T) {
		ids := ix.GroupIDsForLabel("  gundam starter ")
		if _, ok := ids[10]; !ok || len(ids) != 1 {
			t.Errorf("ids = %v, want {10}", ids)
		}
	})

	t.Run("abbreviation resolves by prefix", func(t *testing.T) {
		ids := ix.GroupIDsForAbbreviation("GD01")
		if _, ok := ids[20]; !ok || len(ids) != 1 {
			t.Errorf("ids = %v, want {20}", ids)
		}
	})

	t.Run("bare name resolves by suffix after colon", func(t *testing.T) {
		ids := ix.GroupIDsForBareName("Newtype Risings")
		if _, ok := ids[20]; !ok || len(ids) != 1 {
			t.Errorf("ids = %v, want {20}", ids)
		}
	})

	t.Run("bare name without colon match yields nil", func(t *testing.T) {
		if ids := ix.GroupIDsForBareName("Gundam Starter"); ids != nil {
			t.Errorf("ids = %v, want nil", ids)
		}
	})

	t.Run("empty hints resolve to nothing", func(t *testing.T) {
		if ids := ix.GroupIDsForAbbreviation(""); ids != nil {
			t.Errorf("abbreviation ids = %v, want nil", ids)
		}
		if ids := ix.GroupIDsForBareName("  "); ids != nil {
			t.Errorf("bare name ids = %v, want nil", ids)
		}
	})
}

func TestBuildCatalogIndex(t *testing.T) {
	reader := &stubCatalogReader{
		products: []domain.CatalogProduct{{ProductID: 1, Number: "GD01-118", GroupID: 10}},
		groups:   testGroups(),
	}

	ix, err := BuildCatalogIndex(context.Background(), reader, []string{"GD01-118"}, []string{"Gundam Starter"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ix.CandidatesForNumber("GD01-118"); len(got) != 1 {
		t.Errorf("candidates = %d, want 1", len(got))
	}
	if reader.productCalls != 1 || reader.groupCalls != 1 {
		t.Errorf("reader calls = (%d, %d), want one fetch per entity kind", reader.productCalls, reader.groupCalls)
	}
}
