package menu

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variation is a size or option choice that overrides the item base price.
type Variation struct {
	ID    string          `json:"id"`
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

// AddOn is a repeatable extra charged per selection.
type AddOn struct {
	ID       string          `json:"id"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// Category groups menu items on the storefront.
type Category struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sortOrder"`
	Active    bool   `json:"active"`
}

// Item describes one sellable menu entry. Items are read-only to pricing and
// cart code; only the admin catalog service writes them.
type Item struct {
	ID                string           `json:"id"`
	Name              string           `json:"name" validate:"required"`
	Description       string           `json:"description"`
	BasePrice         decimal.Decimal  `json:"basePrice"`
	Category          string           `json:"category" validate:"required"`
	Image             string           `json:"image,omitempty"`
	Popular           bool             `json:"popular"`
	Available         bool             `json:"available"`
	Variations        []Variation      `json:"variations" validate:"dive"`
	Flavors           []string         `json:"flavors"`
	AddOns            []AddOn          `json:"addOns" validate:"dive"`
	DiscountPrice     *decimal.Decimal `json:"discountPrice,omitempty"`
	DiscountActive    bool             `json:"discountActive"`
	DiscountStartDate *time.Time       `json:"discountStartDate,omitempty"`
	DiscountEndDate   *time.Time       `json:"discountEndDate,omitempty"`
}

// Variation looks up a variation by id.
func (it Item) Variation(id string) (Variation, bool) {
	for _, v := range it.Variations {
		if v.ID == id {
			return v, true
		}
	}
	return Variation{}, false
}

// AddOn looks up an add-on by id.
func (it Item) AddOn(id string) (AddOn, bool) {
	for _, a := range it.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

// HasFlavor reports whether label is one of the item's flavors.
func (it Item) HasFlavor(label string) bool {
	for _, f := range it.Flavors {
		if f == label {
			return true
		}
	}
	return false
}

// AddOnGroup is a set of add-ons sharing a category label.
type AddOnGroup struct {
	Category string  `json:"category"`
	AddOns   []AddOn `json:"addOns"`
}

// AddOnGroups groups add-ons by category in order of first appearance.
func (it Item) AddOnGroups() []AddOnGroup {
	groups := make([]AddOnGroup, 0)
	index := make(map[string]int)
	for _, a := range it.AddOns {
		i, ok := index[a.Category]
		if !ok {
			i = len(groups)
			index[a.Category] = i
			groups = append(groups, AddOnGroup{Category: a.Category})
		}
		groups[i].AddOns = append(groups[i].AddOns, a)
	}
	return groups
}
