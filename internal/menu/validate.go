package menu

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/backend-kedai/internal/common"
)

// ErrInvalidItem is returned when catalog data fails ingestion checks.
var ErrInvalidItem = errors.New("invalid menu item")

// ValidationError lists the offending fields of a rejected item.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidItem, strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match ErrInvalidItem.
func (e *ValidationError) Unwrap() error { return ErrInvalidItem }

// Validate checks the numeric and structural rules every stored item must
// satisfy. Pricing code relies on these holding and does not re-check them.
func Validate(it Item) error {
	fields := map[string]string{}
	if err := common.Validator().Struct(it); err != nil {
		details := common.ValidationDetails(err)
		if details == nil {
			return fmt.Errorf("%w: %v", ErrInvalidItem, err)
		}
		for k, v := range details {
			fields[k] = v
		}
	}
	if it.BasePrice.IsNegative() {
		fields["basePrice"] = "gte=0"
	}
	if it.DiscountPrice != nil && !it.DiscountPrice.IsPositive() {
		fields["discountPrice"] = "gt=0"
	}
	seen := make(map[string]struct{}, len(it.Variations))
	for i, v := range it.Variations {
		if v.Price.IsNegative() {
			fields[fmt.Sprintf("variations[%d].price", i)] = "gte=0"
		}
		if _, dup := seen[v.ID]; dup {
			fields[fmt.Sprintf("variations[%d].id", i)] = "unique"
		}
		seen[v.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(it.AddOns))
	for i, a := range it.AddOns {
		if a.Price.IsNegative() {
			fields[fmt.Sprintf("addOns[%d].price", i)] = "gte=0"
		}
		if _, dup := seen[a.ID]; dup {
			fields[fmt.Sprintf("addOns[%d].id", i)] = "unique"
		}
		seen[a.ID] = struct{}{}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
