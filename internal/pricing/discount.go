package pricing

import (
	"time"

	"github.com/noah-isme/backend-kedai/internal/menu"
)

// DiscountState is the derived discount outcome for one item at one instant.
// It is never stored; callers re-evaluate on every pricing call.
type DiscountState struct {
	Active         bool  `json:"isActive"`
	EffectivePrice Money `json:"effectivePrice"`
	Amount         Money `json:"discountAmount"`
}

// EvaluateDiscount decides whether the item's discount is in force at now.
// An active discount charges the discount price and reports the saving over
// the base price, clamped at zero when the discount price is a markup.
func EvaluateDiscount(item menu.Item, now time.Time) DiscountState {
	inactive := DiscountState{EffectivePrice: item.BasePrice, Amount: Zero}
	window := item.DiscountWindow()
	if !window.Contains(now) {
		return inactive
	}
	price := *item.DiscountPrice
	return DiscountState{
		Active:         true,
		EffectivePrice: price,
		Amount:         clampZero(item.BasePrice.Sub(price)),
	}
}
