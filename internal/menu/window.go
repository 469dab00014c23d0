package menu

import "time"

// WindowKind enumerates the shapes a discount schedule can take.
type WindowKind int

const (
	// WindowNone means no discount is configured.
	WindowNone WindowKind = iota
	// WindowUnbounded means the discount applies at every instant.
	WindowUnbounded
	// WindowBounded means at least one of start or end is set.
	WindowBounded
)

func (k WindowKind) String() string {
	switch k {
	case WindowUnbounded:
		return "unbounded"
	case WindowBounded:
		return "bounded"
	default:
		return "none"
	}
}

// Window is the discount schedule of an item. Start and End are only
// meaningful for WindowBounded; a nil bound is open-ended.
type Window struct {
	Kind  WindowKind
	Start *time.Time
	End   *time.Time
}

// DiscountWindow derives the tagged discount schedule from the item fields.
// A disabled discount, a missing discount price, or a non-positive discount
// price yields WindowNone.
func (it Item) DiscountWindow() Window {
	if !it.DiscountActive || it.DiscountPrice == nil || !it.DiscountPrice.IsPositive() {
		return Window{Kind: WindowNone}
	}
	if it.DiscountStartDate == nil && it.DiscountEndDate == nil {
		return Window{Kind: WindowUnbounded}
	}
	return Window{Kind: WindowBounded, Start: it.DiscountStartDate, End: it.DiscountEndDate}
}

// Malformed reports a bounded window whose start is after its end.
func (w Window) Malformed() bool {
	return w.Kind == WindowBounded && w.Start != nil && w.End != nil && w.Start.After(*w.End)
}

// Contains reports whether now falls inside the window, bounds inclusive.
// Malformed windows never contain any instant.
func (w Window) Contains(now time.Time) bool {
	switch w.Kind {
	case WindowUnbounded:
		return true
	case WindowBounded:
		if w.Malformed() {
			return false
		}
		if w.Start != nil && now.Before(*w.Start) {
			return false
		}
		if w.End != nil && now.After(*w.End) {
			return false
		}
		return true
	default:
		return false
	}
}
