package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-kedai/internal/menu"
)

// ErrInvalidSelection marks a variation, flavor, or add-on that does not
// belong to the priced item.
var ErrInvalidSelection = errors.New("invalid selection")

// SelectedAddOn is one add-on chosen Count times.
type SelectedAddOn struct {
	AddOn menu.AddOn `json:"addOn"`
	Count int        `json:"count"`
}

// ModeKind distinguishes base pricing from variation pricing.
type ModeKind int

const (
	// ModeBase prices from the item's effective base price.
	ModeBase ModeKind = iota
	// ModeVariation prices from a selected variation.
	ModeVariation
)

// PricingMode is either Base or Variation(v).
type PricingMode struct {
	Kind      ModeKind
	Variation menu.Variation
}

// BaseMode prices without a variation.
func BaseMode() PricingMode { return PricingMode{Kind: ModeBase} }

// VariationMode prices from v.
func VariationMode(v menu.Variation) PricingMode {
	return PricingMode{Kind: ModeVariation, Variation: v}
}

// Selection captures the customer's customization of an item.
type Selection struct {
	Variation *menu.Variation `json:"variation,omitempty"`
	Flavor    string          `json:"flavor,omitempty"`
	AddOns    []SelectedAddOn `json:"addOns,omitempty"`
}

// Mode returns the pricing mode implied by the selection.
func (s Selection) Mode() PricingMode {
	if s.Variation == nil {
		return BaseMode()
	}
	return VariationMode(*s.Variation)
}

// Key identifies the customization combination irrespective of add-on order.
func (s Selection) Key() string {
	var b strings.Builder
	if s.Variation != nil {
		b.WriteString(s.Variation.ID)
	}
	b.WriteByte('|')
	b.WriteString(s.Flavor)
	b.WriteByte('|')
	addOns := NormalizeAddOns(s.AddOns)
	parts := make([]string, 0, len(addOns))
	for _, a := range addOns {
		parts = append(parts, a.AddOn.ID+"x"+strconv.Itoa(a.Count))
	}
	sort.Strings(parts)
	b.WriteString(strings.Join(parts, ","))
	return b.String()
}

// NormalizeAddOns merges repeated references to the same add-on, drops
// selections with a count of zero or less, and keeps first-appearance order.
func NormalizeAddOns(in []SelectedAddOn) []SelectedAddOn {
	out := make([]SelectedAddOn, 0, len(in))
	index := make(map[string]int, len(in))
	for _, sel := range in {
		if sel.Count <= 0 {
			continue
		}
		if i, ok := index[sel.AddOn.ID]; ok {
			out[i].Count += sel.Count
			continue
		}
		index[sel.AddOn.ID] = len(out)
		out = append(out, sel)
	}
	return out
}

// ValidateSelection checks that every chosen variation, flavor, and add-on
// belongs to the item.
func ValidateSelection(item menu.Item, sel Selection) error {
	if sel.Variation != nil {
		v, ok := item.Variation(sel.Variation.ID)
		if !ok || !v.Price.Equal(sel.Variation.Price) {
			return fmt.Errorf("%w: variation %q not offered for %s", ErrInvalidSelection, sel.Variation.ID, item.ID)
		}
	}
	if sel.Flavor != "" && !item.HasFlavor(sel.Flavor) {
		return fmt.Errorf("%w: flavor %q not offered for %s", ErrInvalidSelection, sel.Flavor, item.ID)
	}
	for _, a := range sel.AddOns {
		known, ok := item.AddOn(a.AddOn.ID)
		if !ok || !known.Price.Equal(a.AddOn.Price) {
			return fmt.Errorf("%w: add-on %q not offered for %s", ErrInvalidSelection, a.AddOn.ID, item.ID)
		}
	}
	return nil
}

// PriceLine computes the unit price of one line: the base or variation price,
// less the item's absolute discount amount when a variation is selected, plus
// every add-on price times its repeat count. The result is never negative.
func PriceLine(item menu.Item, sel Selection, now time.Time) (Money, error) {
	if err := ValidateSelection(item, sel); err != nil {
		return Zero, err
	}
	discount := EvaluateDiscount(item, now)
	mode := sel.Mode()

	var base Money
	switch mode.Kind {
	case ModeVariation:
		base = mode.Variation.Price
		if discount.Amount.IsPositive() {
			base = clampZero(base.Sub(discount.Amount))
		}
	default:
		base = discount.EffectivePrice
	}

	addOns := Zero
	for _, a := range NormalizeAddOns(sel.AddOns) {
		addOns = addOns.Add(a.AddOn.Price.Mul(decimal.NewFromInt(int64(a.Count))))
	}
	return clampZero(base.Add(addOns)), nil
}
