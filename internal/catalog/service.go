package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kedai/internal/cache"
	"github.com/noah-isme/backend-kedai/internal/common"
	"github.com/noah-isme/backend-kedai/internal/menu"
	"github.com/noah-isme/backend-kedai/internal/obs"
	"github.com/noah-isme/backend-kedai/internal/pricing"
)

var (
	// ErrNotFound indicates the requested item or category does not exist.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrCategoryInUse is returned when deleting a category that still has items.
	ErrCategoryInUse = errors.New("category still has items")
	// ErrUnknownCategory is returned when an item references an undeclared category.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrDuplicateCategory is returned when creating a category whose id exists.
	ErrDuplicateCategory = errors.New("category already exists")
)

// Provider is the read side of the catalog.
type Provider interface {
	ListItems(ctx context.Context) ([]menu.Item, error)
	ListCategories(ctx context.Context) ([]menu.Category, error)
}

// Store persists menu items and categories.
type Store interface {
	Provider
	GetItem(ctx context.Context, id string) (menu.Item, error)
	SaveItem(ctx context.Context, item menu.Item) error
	DeleteItems(ctx context.Context, ids []string) (int, error)
	MoveItems(ctx context.Context, ids []string, categoryID string) (int, error)
	SaveCategory(ctx context.Context, cat menu.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CountItemsInCategory(ctx context.Context, id string) (int, error)
}

// Entry is a storefront item decorated with its live discount state and
// grouped add-ons.
type Entry struct {
	menu.Item
	Discount    pricing.DiscountState `json:"discount"`
	AddOnGroups []menu.AddOnGroup     `json:"addOnGroups,omitempty"`
}

// MenuSection is a storefront section of decorated entries.
type MenuSection struct {
	Category menu.Category `json:"category"`
	Items    []Entry       `json:"items"`
}

// Service orchestrates catalog reads, admin writes, and caching.
type Service struct {
	store  Store
	cache  *cache.JSON
	clock  pricing.Clock
	logger zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store  Store
	Cache  *cache.JSON
	Clock  pricing.Clock
	Logger zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = pricing.SystemClock{}
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, clock: clock, logger: cfg.Logger}, nil
}

// ListItems returns every stored item in catalog order, cached in Redis.
func (s *Service) ListItems(ctx context.Context) ([]menu.Item, error) {
	var items []menu.Item
	if s.cacheGet(ctx, cache.KeyMenuItems, &items) {
		return items, nil
	}
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	s.cacheSet(ctx, cache.KeyMenuItems, items)
	s.warnOrphans(ctx, items)
	return items, nil
}

// warnOrphans logs items the storefront will hide because their category is
// not declared.
func (s *Service) warnOrphans(ctx context.Context, items []menu.Item) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return
	}
	if orphans := OrphanCategories(items, cats); len(orphans) > 0 {
		s.logger.Warn().Strs("category_ids", orphans).Msg("menu items reference undeclared categories")
	}
}

// ListCategories returns every category in display order, cached in Redis.
func (s *Service) ListCategories(ctx context.Context) ([]menu.Category, error) {
	var cats []menu.Category
	if s.cacheGet(ctx, cache.KeyCategories, &cats) {
		return cats, nil
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.cacheSet(ctx, cache.KeyCategories, cats)
	return cats, nil
}

// ActiveCategories returns the categories shown on the storefront.
func (s *Service) ActiveCategories(ctx context.Context) ([]menu.Category, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]menu.Category, 0, len(cats))
	for _, c := range cats {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

// Menu returns the storefront view: available items matching query grouped
// by active category, each decorated with the discount state at the current
// instant. A non-empty categoryID restricts the result to that section.
func (s *Service) Menu(ctx context.Context, query, categoryID string) ([]MenuSection, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.ActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categoryID = strings.TrimSpace(categoryID); categoryID != "" {
		filtered := cats[:0:0]
		for _, c := range cats {
			if c.ID == categoryID {
				filtered = append(filtered, c)
			}
		}
		cats = filtered
	}
	available := make([]menu.Item, 0, len(items))
	for _, it := range items {
		if it.Available {
			available = append(available, it)
		}
	}
	now := s.clock.Now()
	sections := Search(available, cats, query)
	out := make([]MenuSection, 0, len(sections))
	for _, sec := range sections {
		entries := make([]Entry, 0, len(sec.Items))
		for _, it := range sec.Items {
			entries = append(entries, decorate(it, now))
		}
		out = append(out, MenuSection{Category: sec.Category, Items: entries})
	}
	return out, nil
}

// Popular returns available items flagged popular, decorated.
func (s *Service) Popular(ctx context.Context) ([]Entry, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]Entry, 0)
	for _, it := range items {
		if it.Available && it.Popular {
			out = append(out, decorate(it, now))
		}
	}
	return out, nil
}

// Entry returns one item decorated for the storefront.
func (s *Service) Entry(ctx context.Context, id string) (Entry, error) {
	item, ok, err := s.MenuItem(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return decorate(item, s.clock.Now()), nil
}

// MenuItem resolves an item by id for cart pricing.
func (s *Service) MenuItem(ctx context.Context, id string) (menu.Item, bool, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return menu.Item{}, false, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, true, nil
		}
	}
	return menu.Item{}, false, nil
}

// CreateItem validates and stores a new item. An empty id is assigned.
func (s *Service) CreateItem(ctx context.Context, item menu.Item) (menu.Item, error) {
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}
	assignChildIDs(&item)
	if err := s.checkItem(ctx, item); err != nil {
		return menu.Item{}, err
	}
	if err := s.store.SaveItem(ctx, item); err != nil {
		return menu.Item{}, fmt.Errorf("create item: %w", err)
	}
	s.invalidate(ctx)
	return item, nil
}

// UpdateItem replaces a stored item.
func (s *Service) UpdateItem(ctx context.Context, id string, item menu.Item) (menu.Item, error) {
	if _, err := s.store.GetItem(ctx, id); err != nil {
		return menu.Item{}, err
	}
	item.ID = id
	assignChildIDs(&item)
	if err := s.checkItem(ctx, item); err != nil {
		return menu.Item{}, err
	}
	if err := s.store.SaveItem(ctx, item); err != nil {
		return menu.Item{}, fmt.Errorf("update item: %w", err)
	}
	s.invalidate(ctx)
	return item, nil
}

// DeleteItem removes a single item.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	n, err := s.store.DeleteItems(ctx, []string{id})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	s.invalidate(ctx)
	return nil
}

// BulkDelete removes several items and reports how many were deleted.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return 0, badRequest("ids", "at least one id is required", nil)
	}
	n, err := s.store.DeleteItems(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	s.invalidate(ctx)
	return n, nil
}

// BulkMove reassigns several items to categoryID.
func (s *Service) BulkMove(ctx context.Context, ids []string, categoryID string) (int, error) {
	ids = compactIDs(ids)
	if len(ids) == 0 {
		return 0, badRequest("ids", "at least one id is required", nil)
	}
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return 0, err
	}
	n, err := s.store.MoveItems(ctx, ids, categoryID)
	if err != nil {
		return 0, fmt.Errorf("bulk move: %w", err)
	}
	s.invalidate(ctx)
	return n, nil
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, cat menu.Category) (menu.Category, error) {
	cat.ID = strings.TrimSpace(cat.ID)
	if err := validateCategory(cat); err != nil {
		return menu.Category{}, err
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return menu.Category{}, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == cat.ID {
			return menu.Category{}, fmt.Errorf("%s: %w", cat.ID, ErrDuplicateCategory)
		}
	}
	if err := s.store.SaveCategory(ctx, cat); err != nil {
		return menu.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx)
	return cat, nil
}

// UpdateCategory replaces a stored category.
func (s *Service) UpdateCategory(ctx context.Context, id string, cat menu.Category) (menu.Category, error) {
	if err := s.requireCategory(ctx, id); err != nil {
		return menu.Category{}, err
	}
	cat.ID = id
	if err := validateCategory(cat); err != nil {
		return menu.Category{}, err
	}
	if err := s.store.SaveCategory(ctx, cat); err != nil {
		return menu.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx)
	return cat, nil
}

// DeleteCategory removes a category that no item references.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.store.CountItemsInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%s has %d items: %w", id, n, ErrCategoryInUse)
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) checkItem(ctx context.Context, item menu.Item) error {
	if err := menu.Validate(item); err != nil {
		return err
	}
	return s.requireCategory(ctx, item.Category)
}

func (s *Service) requireCategory(ctx context.Context, id string) error {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == id {
			return nil
		}
	}
	return fmt.Errorf("category %q: %w", id, ErrUnknownCategory)
}

func (s *Service) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		obs.IncCounter(obs.CatalogCacheTotal, "error")
		return false
	}
	if hit {
		obs.IncCounter(obs.CatalogCacheTotal, "hit")
	} else {
		obs.IncCounter(obs.CatalogCacheTotal, "miss")
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.CatalogKeys()...); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func decorate(item menu.Item, now time.Time) Entry {
	return Entry{
		Item:        item,
		Discount:    pricing.EvaluateDiscount(item, now),
		AddOnGroups: item.AddOnGroups(),
	}
}

func assignChildIDs(item *menu.Item) {
	for i := range item.Variations {
		if strings.TrimSpace(item.Variations[i].ID) == "" {
			item.Variations[i].ID = uuid.NewString()
		}
	}
	for i := range item.AddOns {
		if strings.TrimSpace(item.AddOns[i].ID) == "" {
			item.AddOns[i].ID = uuid.NewString()
		}
	}
}

func validateCategory(cat menu.Category) error {
	if err := common.Validator().Struct(cat); err != nil {
		return common.Invalid("invalid category", common.ValidationDetails(err), err)
	}
	return nil
}

func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func badRequest(field, message string, err error) *common.AppError {
	appErr := common.BadRequest(message, err)
	appErr.Details = map[string]any{"field": field}
	return appErr
}
