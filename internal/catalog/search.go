package catalog

import (
	"strings"

	"github.com/noah-isme/backend-kedai/internal/menu"
)

// Section is one category heading on the storefront with its visible items.
type Section struct {
	Category menu.Category `json:"category"`
	Items    []menu.Item   `json:"items"`
}

// Matches reports whether item's name or description contains query,
// ignoring case. An empty query matches everything.
func Matches(item menu.Item, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Description), q)
}

// Search groups the items matching query under their categories. Sections
// follow category declaration order and items keep catalog order within a
// section. Categories with no matching items are omitted, as are items whose
// category is not declared. The drop applies to an empty query as well: an
// item only reaches the storefront through a declared category.
// OrphanCategories reports the ids that were dropped this way.
func Search(items []menu.Item, categories []menu.Category, query string) []Section {
	byCategory := make(map[string][]menu.Item, len(categories))
	for _, it := range items {
		if !Matches(it, query) {
			continue
		}
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}
	sections := make([]Section, 0, len(categories))
	for _, cat := range categories {
		matched := byCategory[cat.ID]
		if len(matched) == 0 {
			continue
		}
		sections = append(sections, Section{Category: cat, Items: matched})
		delete(byCategory, cat.ID)
	}
	return sections
}

// OrphanCategories returns, in first-seen order, the category ids referenced
// by items but missing from categories.
func OrphanCategories(items []menu.Item, categories []menu.Category) []string {
	declared := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		declared[c.ID] = struct{}{}
	}
	var orphans []string
	seen := map[string]struct{}{}
	for _, it := range items {
		if _, ok := declared[it.Category]; ok {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		orphans = append(orphans, it.Category)
	}
	return orphans
}
