package ingest

import (
	"testing"

	"github.com/craigmalenga/marketing/models"
)

func productNames(pp []ProductPrice) []string {
	names := make([]string, len(pp))
	for i, p := range pp {
		names[i] = p.Name
	}
	return names
}

func TestExtractProductsBundleSplit(t *testing.T) {
	got := ExtractProducts("Aldis sofa and Kyle sofa, bundle £1000")
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %v", productNames(got))
	}
	if got[0].Name != "Sofa - Aldis" || got[1].Name != "Sofa - Kyle" {
		t.Fatalf("unexpected products %v", productNames(got))
	}
	for _, p := range got {
		if p.Price != 500.0 {
			t.Fatalf("bundle price for %s = %v, want 500", p.Name, p.Price)
		}
	}
	for _, p := range got {
		if p.Name == "Sofa - other" {
			t.Fatal("generic sofa must be suppressed when specific models match")
		}
	}
}

func TestExtractProductsSpecificOverGeneric(t *testing.T) {
	got := ExtractProducts("Roma sofa")
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 product, got %v", productNames(got))
	}
	if got[0].Name != "Sofa - Roma" {
		t.Fatalf("got %q, want Sofa - Roma", got[0].Name)
	}
}

func TestExtractProductsGenericSofa(t *testing.T) {
	got := ExtractProducts("grey corner sofa £899")
	if len(got) != 1 || got[0].Name != "Sofa - other" {
		t.Fatalf("got %v, want [Sofa - other]", productNames(got))
	}
	if got[0].Price != 899 {
		t.Fatalf("price = %v, want 899", got[0].Price)
	}
}

func TestExtractProductsEmptyFallsBackToOther(t *testing.T) {
	for _, desc := range []string{"", "   ", "something unrecognizable"} {
		got := ExtractProducts(desc)
		if len(got) != 1 || got[0].Name != "Other" || got[0].Price != 0 {
			t.Fatalf("ExtractProducts(%q) = %v, want [{Other 0}]", desc, got)
		}
	}
}

func TestExtractProductsPairingOrder(t *testing.T) {
	// Products keep discovery order, prices are assigned descending. The
	// pairing is kept for compatibility even when the text implies the
	// opposite assignment.
	got := ExtractProducts("TV priced at £300 and laptop priced at £900")
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %v", productNames(got))
	}
	if got[0].Name != "TV" || got[0].Price != 900 {
		t.Fatalf("first pair = %v, want TV at 900", got[0])
	}
	if got[1].Name != "Laptop" || got[1].Price != 300 {
		t.Fatalf("second pair = %v, want Laptop at 300", got[1])
	}
}

func TestExtractProductsMorePricesThanProducts(t *testing.T) {
	got := ExtractProducts("washing machine £450, was £600")
	if len(got) != 1 {
		t.Fatalf("expected 1 product, got %v", productNames(got))
	}
	if got[0].Name != "Washer dryer" || got[0].Price != 600 {
		t.Fatalf("got %v, want Washer dryer at 600 (highest price first)", got[0])
	}
}

func TestExtractProductsMoreProductsNoBundle(t *testing.T) {
	got := ExtractProducts("fridge freezer £700 plus microwave")
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %v", productNames(got))
	}
	if got[0].Name != "Fridge freezer" || got[0].Price != 700 {
		t.Fatalf("first pair = %v, want Fridge freezer at 700", got[0])
	}
	if got[1].Name != "Microwave" || got[1].Price != 0 {
		t.Fatalf("second pair = %v, want Microwave at 0", got[1])
	}
}

func TestExtractProductsNoPrices(t *testing.T) {
	got := ExtractProducts("hot tub and bbq")
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %v", productNames(got))
	}
	for _, p := range got {
		if p.Price != 0 {
			t.Fatalf("price for %s = %v, want 0", p.Name, p.Price)
		}
	}
}

func TestExtractProductsWordBoundaries(t *testing.T) {
	got := ExtractProducts("three piece bedroom wardrobe")
	for _, p := range got {
		if p.Name == "Bed" {
			t.Fatal("\"bedroom\" must not match Bed")
		}
	}
}

func TestExtractPricesDedupAndSort(t *testing.T) {
	prices := extractPrices("sofa £500, matching chair £500, footstool £150, RRP: 1200")
	want := []float64{1200, 500, 150}
	if len(prices) != len(want) {
		t.Fatalf("prices = %v, want %v", prices, want)
	}
	for i := range want {
		if prices[i] != want[i] {
			t.Fatalf("prices = %v, want %v", prices, want)
		}
	}
}

func TestCategoryFor(t *testing.T) {
	cases := map[string]string{
		"Sofa - Roma":    models.CategorySofa,
		"Bed":            models.CategoryFurniture,
		"Microwave":      models.CategoryAppliances,
		"TV":             models.CategoryElectronics,
		"Hot tub":        models.CategoryLeisure,
		"BBQ":            models.CategoryOutdoor,
		"Something else": models.CategoryOther,
	}
	for name, want := range cases {
		if got := CategoryFor(name); got != want {
			t.Fatalf("CategoryFor(%q) = %q, want %q", name, got, want)
		}
	}
}
