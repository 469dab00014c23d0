package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-kedai/internal/menu"
)

// DB is the subset of pgxpool.Pool used by PGStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	DB DB
}

const selectItems = `SELECT id, name, description, base_price, category_id, image_url, popular, available,
	flavors, discount_price, discount_active, discount_start_date, discount_end_date
FROM menu_items`

// ListItems implements Provider.
func (s PGStore) ListItems(ctx context.Context) ([]menu.Item, error) {
	rows, err := s.DB.Query(ctx, selectItems+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, err
	}
	if err := s.attachChildren(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem implements Store.
func (s PGStore) GetItem(ctx context.Context, id string) (menu.Item, error) {
	rows, err := s.DB.Query(ctx, selectItems+` WHERE id = $1`, id)
	if err != nil {
		return menu.Item{}, err
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menu.Item{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return menu.Item{}, err
	}
	items := []menu.Item{item}
	if err := s.attachChildren(ctx, items); err != nil {
		return menu.Item{}, err
	}
	return items[0], nil
}

// SaveItem upserts an item and replaces its variations and add-ons.
func (s PGStore) SaveItem(ctx context.Context, item menu.Item) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO menu_items (id, name, description, base_price, category_id, image_url,
	popular, available, flavors, discount_price, discount_active, discount_start_date, discount_end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	base_price = EXCLUDED.base_price,
	category_id = EXCLUDED.category_id,
	image_url = EXCLUDED.image_url,
	popular = EXCLUDED.popular,
	available = EXCLUDED.available,
	flavors = EXCLUDED.flavors,
	discount_price = EXCLUDED.discount_price,
	discount_active = EXCLUDED.discount_active,
	discount_start_date = EXCLUDED.discount_start_date,
	discount_end_date = EXCLUDED.discount_end_date,
	updated_at = now()`,
			item.ID, item.Name, item.Description, toNumeric(item.BasePrice), item.Category, textOrNull(item.Image),
			item.Popular, item.Available, flavors(item.Flavors), optionalNumeric(item.DiscountPrice), item.DiscountActive,
			optionalTime(item.DiscountStartDate), optionalTime(item.DiscountEndDate))
		if err != nil {
			return fmt.Errorf("upsert item: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM menu_item_variations WHERE item_id = $1`, item.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM menu_item_add_ons WHERE item_id = $1`, item.ID); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i, v := range item.Variations {
			batch.Queue(`INSERT INTO menu_item_variations (item_id, id, name, price, position) VALUES ($1, $2, $3, $4, $5)`,
				item.ID, v.ID, v.Name, toNumeric(v.Price), i)
		}
		for i, a := range item.AddOns {
			batch.Queue(`INSERT INTO menu_item_add_ons (item_id, id, name, price, category, position) VALUES ($1, $2, $3, $4, $5, $6)`,
				item.ID, a.ID, a.Name, toNumeric(a.Price), a.Category, i)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// DeleteItems implements Store. Children cascade.
func (s PGStore) DeleteItems(ctx context.Context, ids []string) (int, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// MoveItems implements Store.
func (s PGStore) MoveItems(ctx context.Context, ids []string, categoryID string) (int, error) {
	tag, err := s.DB.Exec(ctx, `UPDATE menu_items SET category_id = $2, updated_at = now() WHERE id = ANY($1)`, ids, categoryID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ListCategories implements Provider.
func (s PGStore) ListCategories(ctx context.Context) ([]menu.Category, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, name, icon, sort_order, active FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (menu.Category, error) {
		var c menu.Category
		err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.SortOrder, &c.Active)
		return c, err
	})
}

// SaveCategory implements Store.
func (s PGStore) SaveCategory(ctx context.Context, cat menu.Category) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO categories (id, name, icon, sort_order, active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, icon = EXCLUDED.icon,
	sort_order = EXCLUDED.sort_order, active = EXCLUDED.active, updated_at = now()`,
		cat.ID, cat.Name, cat.Icon, cat.SortOrder, cat.Active)
	return err
}

// DeleteCategory implements Store.
func (s PGStore) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%s: %w", id, ErrCategoryInUse)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}

// CountItemsInCategory implements Store.
func (s PGStore) CountItemsInCategory(ctx context.Context, id string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `SELECT count(*) FROM menu_items WHERE category_id = $1`, id).Scan(&n)
	return n, err
}

func (s PGStore) attachChildren(ctx context.Context, items []menu.Item) error {
	if len(items) == 0 {
		return nil
	}
	index := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for i, it := range items {
		index[it.ID] = i
		ids = append(ids, it.ID)
	}

	rows, err := s.DB.Query(ctx, `SELECT item_id, id, name, price FROM menu_item_variations
WHERE item_id = ANY($1) ORDER BY item_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list variations: %w", err)
	}
	var (
		itemID string
		v      menu.Variation
		price  pgtype.Numeric
	)
	_, err = pgx.ForEachRow(rows, []any{&itemID, &v.ID, &v.Name, &price}, func() error {
		v.Price = fromNumeric(price)
		items[index[itemID]].Variations = append(items[index[itemID]].Variations, v)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan variations: %w", err)
	}

	rows, err = s.DB.Query(ctx, `SELECT item_id, id, name, price, category FROM menu_item_add_ons
WHERE item_id = ANY($1) ORDER BY item_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list add-ons: %w", err)
	}
	var a menu.AddOn
	_, err = pgx.ForEachRow(rows, []any{&itemID, &a.ID, &a.Name, &price, &a.Category}, func() error {
		a.Price = fromNumeric(price)
		items[index[itemID]].AddOns = append(items[index[itemID]].AddOns, a)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan add-ons: %w", err)
	}
	return nil
}

func scanItem(row pgx.CollectableRow) (menu.Item, error) {
	var (
		it            menu.Item
		base          pgtype.Numeric
		discount      pgtype.Numeric
		image         pgtype.Text
		start, end    pgtype.Timestamptz
		flavorsColumn []string
	)
	err := row.Scan(&it.ID, &it.Name, &it.Description, &base, &it.Category, &image, &it.Popular, &it.Available,
		&flavorsColumn, &discount, &it.DiscountActive, &start, &end)
	if err != nil {
		return menu.Item{}, err
	}
	it.BasePrice = fromNumeric(base)
	if discount.Valid {
		d := fromNumeric(discount)
		it.DiscountPrice = &d
	}
	if image.Valid {
		it.Image = image.String
	}
	if start.Valid {
		t := start.Time
		it.DiscountStartDate = &t
	}
	if end.Valid {
		t := end.Time
		it.DiscountEndDate = &t
	}
	it.Flavors = flavorsColumn
	return it, nil
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func optionalNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return toNumeric(*d)
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func optionalTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func flavors(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
