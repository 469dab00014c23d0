package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kedai/internal/menu"
)

func searchFixture() ([]menu.Item, []menu.Category) {
	categories := []menu.Category{
		{ID: "coffee", Name: "Coffee"},
		{ID: "tea", Name: "Milk Tea"},
		{ID: "snacks", Name: "Snacks"},
	}
	items := []menu.Item{
		{ID: "1", Name: "Spanish Latte", Description: "Sweet milk espresso", Category: "coffee"},
		{ID: "2", Name: "Wintermelon", Description: "Classic milk tea", Category: "tea"},
		{ID: "3", Name: "Americano", Description: "Bold black coffee", Category: "coffee"},
		{ID: "4", Name: "Okinawa", Description: "Roasted brown sugar milk tea", Category: "tea"},
		{ID: "5", Name: "Mystery", Description: "milk", Category: "retired"},
	}
	return items, categories
}

func ids(sections []Section) map[string][]string {
	out := map[string][]string{}
	for _, s := range sections {
		for _, it := range s.Items {
			out[s.Category.ID] = append(out[s.Category.ID], it.ID)
		}
	}
	return out
}

func TestSearchEmptyQueryReturnsWholeCatalog(t *testing.T) {
	items, categories := searchFixture()
	sections := Search(items, categories, "  ")
	require.Len(t, sections, 2)
	require.Equal(t, "coffee", sections[0].Category.ID)
	require.Equal(t, "tea", sections[1].Category.ID)
	require.Equal(t, map[string][]string{"coffee": {"1", "3"}, "tea": {"2", "4"}}, ids(sections))
}

func TestSearchMatchesNameOrDescriptionCaseInsensitive(t *testing.T) {
	items, categories := searchFixture()

	sections := Search(items, categories, "MILK")
	require.Equal(t, map[string][]string{"coffee": {"1"}, "tea": {"2", "4"}}, ids(sections))

	sections = Search(items, categories, "americano")
	require.Len(t, sections, 1)
	require.Equal(t, "coffee", sections[0].Category.ID)

	require.Empty(t, Search(items, categories, "pizza"))
}

func TestSearchKeepsCategoryDeclarationOrder(t *testing.T) {
	items, categories := searchFixture()
	reversed := []menu.Category{categories[2], categories[1], categories[0]}
	sections := Search(items, reversed, "")
	require.Equal(t, "tea", sections[0].Category.ID)
	require.Equal(t, "coffee", sections[1].Category.ID)
}

func TestSearchDropsUndeclaredCategoryForEmptyQuery(t *testing.T) {
	items, categories := searchFixture()
	for _, sec := range Search(items, categories, "") {
		for _, it := range sec.Items {
			require.NotEqual(t, "5", it.ID)
		}
	}
	require.Equal(t, []string{"retired"}, OrphanCategories(items, categories))
	require.Empty(t, OrphanCategories(items[:4], categories))
}
