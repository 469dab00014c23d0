package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-kedai/internal/menu"
	"github.com/noah-isme/backend-kedai/internal/pricing"
)

var (
	// ErrLineNotFound indicates the requested cart line does not exist.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrInvalidQuantity is returned when adding a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// newLineID is swapped in tests for deterministic identifiers.
var newLineID = uuid.NewString

// Line is one priced entry in the cart. UnitPrice is a snapshot taken when the
// line was created and is never re-derived from the catalog.
type Line struct {
	ID         string                  `json:"id"`
	ItemID     string                  `json:"itemId"`
	Name       string                  `json:"name"`
	Category   string                  `json:"category"`
	Quantity   int                     `json:"quantity"`
	Variation  *menu.Variation         `json:"variation,omitempty"`
	Flavor     string                  `json:"flavor,omitempty"`
	AddOns     []pricing.SelectedAddOn `json:"addOns,omitempty"`
	UnitPrice  pricing.Money           `json:"unitPrice"`
	TotalPrice pricing.Money           `json:"totalPrice"`
	AddedAt    time.Time               `json:"addedAt"`
}

// Selection rebuilds the customization the line was priced with.
func (l Line) Selection() pricing.Selection {
	return pricing.Selection{Variation: l.Variation, Flavor: l.Flavor, AddOns: l.AddOns}
}

func (l Line) mergeKey() string {
	return l.ItemID + "#" + l.Selection().Key()
}

func (l *Line) setQuantity(qty int) {
	l.Quantity = qty
	l.TotalPrice = pricing.LineTotal(l.UnitPrice, qty)
}

// Cart is an ordered collection of lines owned by one browsing session.
// It is not safe for concurrent use.
type Cart struct {
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Lines: []Line{}}
}

// AddLine prices the selection at now and appends a new line. When a line
// with the same item, variation, flavor, add-on multiset, and unit price
// already exists its quantity is incremented instead.
func (c *Cart) AddLine(item menu.Item, qty int, sel pricing.Selection, now time.Time) (Line, error) {
	if qty <= 0 {
		return Line{}, fmt.Errorf("add %s: %w", item.ID, ErrInvalidQuantity)
	}
	sel.AddOns = pricing.NormalizeAddOns(sel.AddOns)
	unit, err := pricing.PriceLine(item, sel, now)
	if err != nil {
		return Line{}, err
	}
	candidate := Line{
		ItemID:    item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Variation: sel.Variation,
		Flavor:    sel.Flavor,
		AddOns:    sel.AddOns,
		UnitPrice: unit,
		AddedAt:   now,
	}
	key := candidate.mergeKey()
	for i := range c.Lines {
		existing := &c.Lines[i]
		if existing.mergeKey() == key && existing.UnitPrice.Equal(unit) {
			existing.setQuantity(existing.Quantity + qty)
			c.UpdatedAt = now
			return *existing, nil
		}
	}
	candidate.ID = newLineID()
	candidate.setQuantity(qty)
	c.Lines = append(c.Lines, candidate)
	c.UpdatedAt = now
	return candidate, nil
}

// UpdateQuantity sets the quantity of a line and recomputes its total. A
// quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(lineID string, qty int) error {
	idx := c.indexOf(lineID)
	if idx < 0 {
		return fmt.Errorf("update %s: %w", lineID, ErrLineNotFound)
	}
	if qty <= 0 {
		c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
		return nil
	}
	c.Lines[idx].setQuantity(qty)
	return nil
}

// RemoveLine deletes a line. Removing an absent line is a no-op.
func (c *Cart) RemoveLine(lineID string) {
	if idx := c.indexOf(lineID); idx >= 0 {
		c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = []Line{}
}

// Line returns the line with the given id.
func (c *Cart) Line(lineID string) (Line, bool) {
	if idx := c.indexOf(lineID); idx >= 0 {
		return c.Lines[idx], true
	}
	return Line{}, false
}

// Total is the sum of line totals; zero for an empty cart.
func (c *Cart) Total() pricing.Money {
	total := pricing.Zero
	if c == nil {
		return total
	}
	for _, l := range c.Lines {
		total = total.Add(l.TotalPrice)
	}
	return total
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// QuantityOf sums the quantity of every line for itemID.
func (c *Cart) QuantityOf(itemID string) int {
	n := 0
	for _, l := range c.Lines {
		if l.ItemID == itemID {
			n += l.Quantity
		}
	}
	return n
}

// Summary reports unit and money totals through the pricing engine.
func (c *Cart) Summary() pricing.Summary {
	items := make([]pricing.Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, pricing.Item{Qty: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return pricing.Compute(items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

func (c *Cart) indexOf(lineID string) int {
	for i, l := range c.Lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}
