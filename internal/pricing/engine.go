package pricing

import "github.com/shopspring/decimal"

// Item describes a priced, quantity-bearing entry used for totals.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed totals.
type Summary struct {
	Items    int   `json:"items"`
	Subtotal Money `json:"subtotal"`
	Total    Money `json:"total"`
}

// LineTotal is unit × qty, zero for non-positive quantities.
func LineTotal(unit Money, qty int) Money {
	if qty <= 0 {
		return Zero
	}
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Compute calculates totals given the provided items.
func Compute(items []Item) Summary {
	subtotal := Zero
	count := 0
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		count += it.Qty
		subtotal = subtotal.Add(LineTotal(it.UnitPrice, it.Qty))
	}
	return Summary{Items: count, Subtotal: subtotal, Total: subtotal}
}
