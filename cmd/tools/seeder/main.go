package main

import (
	"context"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-kedai/internal/catalog"
	"github.com/noah-isme/backend-kedai/internal/db"
	"github.com/noah-isme/backend-kedai/internal/menu"
	"github.com/noah-isme/backend-kedai/internal/obs"
	"github.com/noah-isme/backend-kedai/internal/payment"
)

type seedItem struct {
	Name        string
	Price       int64
	Description string
}

type seedCategory struct {
	ID    string
	Name  string
	Icon  string
	Items []seedItem
}

var categories = []seedCategory{
	{ID: "breakfast", Name: "Breakfast", Icon: "🍳", Items: []seedItem{
		{"Beef Tapa", 149, "Tender marinated beef with garlic rice and fried egg"},
		{"Pork Tocino", 139, "Sweet cured pork with garlic rice and fried egg"},
		{"Chorizo Pudpud", 139, "Spicy Filipino chorizo with garlic rice and fried egg"},
		{"Hungarian Sausage", 129, "Savory Hungarian sausage with garlic rice and fried egg"},
	}},
	{ID: "mains", Name: "Mains", Icon: "🍛", Items: []seedItem{
		{"Beef Bibimbap", 189, "Korean rice bowl with beef, vegetables, and egg"},
		{"Beef Shawarma Rice", 169, "Flavorful beef shawarma over rice with vegetables"},
		{"Chicken Adobo Flakes", 159, "Crispy chicken adobo flakes with rice and vegetables"},
		{"Chicken Cordon Bleu", 179, "Breaded chicken stuffed with ham and cheese"},
		{"Fried Chicken", 149, "Crispy fried chicken with rice"},
		{"Pork Katsu", 169, "Crispy breaded pork cutlet with tonkatsu sauce"},
		{"Pork Sisig w/ Egg", 159, "Sizzling pork sisig topped with egg"},
	}},
	{ID: "snacks", Name: "Snacks", Icon: "🍟", Items: []seedItem{
		{"Beef Nacho Fries", 149, "Crispy fries topped with seasoned beef and cheese"},
		{"House Cheese Burger w/ Fries", 169, "Juicy beef burger with cheese and fries"},
		{"Shawarma Wrap w/ Fries", 159, "Beef shawarma wrap served with fries"},
	}},
	{ID: "pasta", Name: "Pasta", Icon: "🍝", Items: []seedItem{
		{"Mac & Cheese", 149, "Creamy macaroni and cheese"},
		{"Pasta Alfredo", 159, "Creamy Alfredo pasta"},
		{"Pesto Pasta", 159, "Pasta with fresh basil pesto sauce"},
	}},
	{ID: "munchies", Name: "Munchies", Icon: "🍢", Items: []seedItem{
		{"Hungarian Sausage", 99, "Grilled Hungarian sausage"},
		{"Lumpia Shanghai", 119, "Filipino spring rolls with sweet chili sauce"},
		{"Sizzling Pork Sisig", 179, "Sizzling plate of chopped pork sisig"},
	}},
	{ID: "crafted-drinks", Name: "Crafted Drinks", Icon: "☕", Items: []seedItem{
		{"Blueberry Cloud", 99, "Refreshing blueberry cream drink"},
		{"Brewed Coffee", 69, "Fresh brewed coffee"},
		{"Iced Coffee", 79, "Smooth iced coffee"},
		{"Lychee Lemon Boba", 109, "Lychee lemon tea with boba pearls"},
		{"Matcha Cloud", 109, "Creamy matcha cloud drink"},
	}},
	{ID: "extras", Name: "Extras", Icon: "🍚", Items: []seedItem{
		{"Fried Egg", 25, "Sunny side up fried egg"},
		{"Garlic Rice", 35, "Fragrant garlic fried rice"},
		{"Kimchi", 45, "Traditional Korean fermented vegetables"},
		{"Plain Rice", 25, "Steamed white rice"},
	}},
}

var methods = []payment.Method{
	{ID: payment.CashOnDelivery, Name: "Cash on Delivery", Active: true, SortOrder: 0},
	{ID: "gcash", Name: "GCash", AccountNumber: "09XX XXX XXXX", AccountName: "Kedai", Active: true, SortOrder: 1},
	{ID: "maya", Name: "Maya", AccountNumber: "09XX XXX XXXX", AccountName: "Kedai", Active: true, SortOrder: 2},
}

func main() {
	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}
	if err := db.Migrate(dbURL); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	store := catalog.PGStore{DB: pool}
	items := 0
	for i, cat := range categories {
		err := store.SaveCategory(ctx, menu.Category{ID: cat.ID, Name: cat.Name, Icon: cat.Icon, SortOrder: i, Active: true})
		if err != nil {
			logger.Fatal().Err(err).Str("category", cat.ID).Msg("seed category")
		}
		for _, seed := range cat.Items {
			item := buildItem(cat.ID, seed)
			if err := menu.Validate(item); err != nil {
				logger.Fatal().Err(err).Str("item", item.ID).Msg("invalid seed item")
			}
			if err := store.SaveItem(ctx, item); err != nil {
				logger.Fatal().Err(err).Str("item", item.ID).Msg("seed item")
			}
			items++
		}
	}
	logger.Info().Int("categories", len(categories)).Int("items", items).Msg("catalog seeded")

	payments := payment.PGStore{DB: pool}
	for _, m := range methods {
		if err := payments.Save(ctx, m); err != nil {
			logger.Fatal().Err(err).Str("method", m.ID).Msg("seed payment method")
		}
	}
	logger.Info().Int("payment_methods", len(methods)).Msg("seeding completed")
}

// buildItem turns a seed row into a menu item. Drinks get cup sizes and sweetener add-ons.
func buildItem(categoryID string, seed seedItem) menu.Item {
	base := decimal.NewFromInt(seed.Price)
	item := menu.Item{
		ID:          categoryID + "-" + slug(seed.Name),
		Name:        seed.Name,
		Description: seed.Description,
		BasePrice:   base,
		Category:    categoryID,
		Available:   true,
	}
	if categoryID == "crafted-drinks" {
		item.Variations = []menu.Variation{
			{ID: "regular", Name: "Regular", Price: base},
			{ID: "large", Name: "Large", Price: base.Add(decimal.NewFromInt(20))},
		}
		item.AddOns = []menu.AddOn{
			{ID: "extra-shot", Name: "Extra Shot", Price: decimal.NewFromInt(25), Category: "Extras"},
			{ID: "oat-milk", Name: "Oat Milk", Price: decimal.NewFromInt(30), Category: "Milk"},
		}
		item.Flavors = []string{"Classic", "Less Sweet"}
	}
	return item
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
