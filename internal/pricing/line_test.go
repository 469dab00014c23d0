package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/noah-isme/backend-kedai/internal/menu"
)

func sizedItem() menu.Item {
	item := discountedItem()
	item.Variations = []menu.Variation{
		{ID: "regular", Name: "Regular", Price: money("159")},
		{ID: "large", Name: "Large", Price: money("189")},
		{ID: "kids", Name: "Kids", Price: money("20")},
	}
	item.Flavors = []string{"Spicy", "Classic"}
	item.AddOns = []menu.AddOn{
		{ID: "egg", Name: "Extra Egg", Price: money("20"), Category: "extras"},
		{ID: "rice", Name: "Extra Rice", Price: money("15"), Category: "extras"},
	}
	return item
}

func TestPriceLineVariationReceivesAbsoluteDiscount(t *testing.T) {
	item := sizedItem()
	large, _ := item.Variation("large")
	unit, err := PriceLine(item, Selection{Variation: &large}, time.Now())
	if err != nil {
		t.Fatalf("price line: %v", err)
	}
	if !unit.Equal(money("159")) {
		t.Fatalf("expected 189 - 30 = 159, got %s", unit)
	}
}

func TestPriceLineBaseUsesEffectivePrice(t *testing.T) {
	unit, err := PriceLine(sizedItem(), Selection{}, time.Now())
	if err != nil {
		t.Fatalf("price line: %v", err)
	}
	if !unit.Equal(money("129")) {
		t.Fatalf("expected discounted base 129, got %s", unit)
	}
}

func TestPriceLineAddOnsRepeat(t *testing.T) {
	item := menu.Item{
		ID:        "burger",
		Name:      "House Cheese Burger",
		BasePrice: money("100"),
		Category:  "snacks",
		AddOns: []menu.AddOn{
			{ID: "egg", Name: "Extra Egg", Price: money("20")},
			{ID: "rice", Name: "Extra Rice", Price: money("15")},
		},
	}
	sel := Selection{AddOns: []SelectedAddOn{
		{AddOn: item.AddOns[0], Count: 2},
		{AddOn: item.AddOns[1], Count: 1},
	}}
	unit, err := PriceLine(item, sel, time.Now())
	if err != nil {
		t.Fatalf("price line: %v", err)
	}
	if !unit.Equal(money("155")) {
		t.Fatalf("expected 100 + 20x2 + 15 = 155, got %s", unit)
	}
}

func TestPriceLineClampsVariationBelowDiscount(t *testing.T) {
	item := sizedItem()
	kids, _ := item.Variation("kids")
	unit, err := PriceLine(item, Selection{Variation: &kids}, time.Now())
	if err != nil {
		t.Fatalf("price line: %v", err)
	}
	if !unit.IsZero() {
		t.Fatalf("expected clamp to zero, got %s", unit)
	}

	egg, _ := item.AddOn("egg")
	unit, err = PriceLine(item, Selection{Variation: &kids, AddOns: []SelectedAddOn{{AddOn: egg, Count: 1}}}, time.Now())
	if err != nil {
		t.Fatalf("price line: %v", err)
	}
	if !unit.Equal(money("20")) {
		t.Fatalf("expected clamped base plus add-on = 20, got %s", unit)
	}
}

func TestPriceLineMonotonicInAddOns(t *testing.T) {
	item := sizedItem()
	egg, _ := item.AddOn("egg")
	rice, _ := item.AddOn("rice")
	now := time.Now()
	prev, err := PriceLine(item, Selection{}, now)
	if err != nil {
		t.Fatalf("price line: %v", err)
	}
	var selected []SelectedAddOn
	for i := 0; i < 6; i++ {
		pick := egg
		if i%2 == 1 {
			pick = rice
		}
		selected = append(selected, SelectedAddOn{AddOn: pick, Count: 1})
		next, err := PriceLine(item, Selection{AddOns: selected}, now)
		if err != nil {
			t.Fatalf("price line: %v", err)
		}
		if next.LessThan(prev) {
			t.Fatalf("unit price decreased from %s to %s", prev, next)
		}
		prev = next
	}
}

func TestPriceLineFlavorIsFree(t *testing.T) {
	item := sizedItem()
	plain, _ := PriceLine(item, Selection{}, time.Now())
	spicy, err := PriceLine(item, Selection{Flavor: "Spicy"}, time.Now())
	if err != nil {
		t.Fatalf("price line: %v", err)
	}
	if !plain.Equal(spicy) {
		t.Fatalf("flavor changed price: %s vs %s", plain, spicy)
	}
}

func TestPriceLineRejectsForeignSelections(t *testing.T) {
	item := sizedItem()
	foreignVariation := menu.Variation{ID: "jumbo", Name: "Jumbo", Price: money("250")}
	tamperedVariation := menu.Variation{ID: "large", Name: "Large", Price: money("1")}
	foreignAddOn := menu.AddOn{ID: "cheese", Name: "Cheese", Price: money("10")}

	cases := map[string]Selection{
		"variation":          {Variation: &foreignVariation},
		"tampered variation": {Variation: &tamperedVariation},
		"flavor":             {Flavor: "Garlic"},
		"add-on":             {AddOns: []SelectedAddOn{{AddOn: foreignAddOn, Count: 1}}},
	}
	for name, sel := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := PriceLine(item, sel, time.Now())
			if !errors.Is(err, ErrInvalidSelection) {
				t.Fatalf("expected ErrInvalidSelection, got %v", err)
			}
		})
	}
}

func TestNormalizeAddOns(t *testing.T) {
	egg := menu.AddOn{ID: "egg", Price: money("20")}
	rice := menu.AddOn{ID: "rice", Price: money("15")}
	got := NormalizeAddOns([]SelectedAddOn{
		{AddOn: rice, Count: 0},
		{AddOn: egg, Count: 1},
		{AddOn: rice, Count: 2},
		{AddOn: egg, Count: 1},
		{AddOn: rice, Count: -1},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 selections, got %d", len(got))
	}
	if got[0].AddOn.ID != "egg" || got[0].Count != 2 {
		t.Fatalf("unexpected first selection %+v", got[0])
	}
	if got[1].AddOn.ID != "rice" || got[1].Count != 2 {
		t.Fatalf("unexpected second selection %+v", got[1])
	}
}

func TestSelectionKeyIgnoresAddOnOrder(t *testing.T) {
	egg := menu.AddOn{ID: "egg"}
	rice := menu.AddOn{ID: "rice"}
	large := menu.Variation{ID: "large"}
	a := Selection{Variation: &large, Flavor: "Spicy", AddOns: []SelectedAddOn{{AddOn: egg, Count: 2}, {AddOn: rice, Count: 1}}}
	b := Selection{Variation: &large, Flavor: "Spicy", AddOns: []SelectedAddOn{{AddOn: rice, Count: 1}, {AddOn: egg, Count: 1}, {AddOn: egg, Count: 1}}}
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	c := Selection{Variation: &large, Flavor: "Classic", AddOns: a.AddOns}
	if a.Key() == c.Key() {
		t.Fatal("flavor must be part of the key")
	}
}

func TestSelectionMode(t *testing.T) {
	if (Selection{}).Mode().Kind != ModeBase {
		t.Fatal("expected base mode")
	}
	v := menu.Variation{ID: "large"}
	if m := (Selection{Variation: &v}).Mode(); m.Kind != ModeVariation || m.Variation.ID != "large" {
		t.Fatalf("unexpected mode %+v", m)
	}
}
