package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kedai/internal/lock"
	"github.com/noah-isme/backend-kedai/internal/menu"
	"github.com/noah-isme/backend-kedai/internal/obs"
	"github.com/noah-isme/backend-kedai/internal/pricing"
)

var (
	// ErrItemNotFound indicates the referenced menu item does not exist.
	ErrItemNotFound = errors.New("menu item not found")
	// ErrItemUnavailable indicates the menu item is hidden from the storefront.
	ErrItemUnavailable = errors.New("menu item unavailable")
)

// ItemSource resolves menu items for pricing.
type ItemSource interface {
	MenuItem(ctx context.Context, id string) (menu.Item, bool, error)
}

// Locker serialises mutations of a single cart.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// AddOnRequest references an add-on by id with a repeat count.
type AddOnRequest struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// AddLineRequest describes an add-to-cart action using catalog identifiers.
type AddLineRequest struct {
	ItemID      string         `json:"itemId"`
	Quantity    int            `json:"quantity"`
	VariationID string         `json:"variationId,omitempty"`
	Flavor      string         `json:"flavor,omitempty"`
	AddOns      []AddOnRequest `json:"addOns,omitempty"`
}

// Service orchestrates cart sessions on top of a Store.
type Service struct {
	Store   Store
	Items   ItemSource
	Locker  Locker
	LockTTL time.Duration
	Clock   pricing.Clock
	Logger  zerolog.Logger
}

func (s *Service) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

func (s *Service) configured() error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return nil
}

// Create starts an empty cart and returns its id.
func (s *Service) Create(ctx context.Context) (string, *Cart, error) {
	if err := s.configured(); err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	c := New()
	c.UpdatedAt = s.now()
	err := s.Store.Save(ctx, id, c)
	obs.IncCounter(obs.CartOperationsTotal, "create", obs.Result(err))
	if err != nil {
		return "", nil, err
	}
	return id, c, nil
}

// Get loads a cart.
func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	return s.Store.Load(ctx, id)
}

// AddLine resolves the request against the catalog and adds it to the cart.
func (s *Service) AddLine(ctx context.Context, cartID string, req AddLineRequest) (*Cart, Line, error) {
	var added Line
	c, err := s.mutate(ctx, "add_line", cartID, func(ctx context.Context, c *Cart) error {
		item, sel, err := s.resolve(ctx, req)
		if err != nil {
			return err
		}
		added, err = c.AddLine(item, req.Quantity, sel, s.now())
		return err
	})
	return c, added, err
}

// UpdateQuantity changes the quantity of a line; zero or less removes it.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, lineID string, qty int) (*Cart, error) {
	return s.mutate(ctx, "update_quantity", cartID, func(_ context.Context, c *Cart) error {
		return c.UpdateQuantity(lineID, qty)
	})
}

// RemoveLine deletes a line from the cart.
func (s *Service) RemoveLine(ctx context.Context, cartID, lineID string) (*Cart, error) {
	return s.mutate(ctx, "remove_line", cartID, func(_ context.Context, c *Cart) error {
		c.RemoveLine(lineID)
		return nil
	})
}

// Clear removes every line from the cart.
func (s *Service) Clear(ctx context.Context, cartID string) (*Cart, error) {
	return s.mutate(ctx, "clear", cartID, func(_ context.Context, c *Cart) error {
		c.Clear()
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, op, cartID string, fn func(context.Context, *Cart) error) (*Cart, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	var result *Cart
	run := func(ctx context.Context) error {
		c, err := s.Store.Load(ctx, cartID)
		if err != nil {
			return err
		}
		if err := fn(ctx, c); err != nil {
			return err
		}
		c.UpdatedAt = s.now()
		if err := s.Store.Save(ctx, cartID, c); err != nil {
			return fmt.Errorf("save cart %s: %w", cartID, err)
		}
		result = c
		return nil
	}
	var err error
	if s.Locker != nil {
		err = s.Locker.WithLock(ctx, lock.CartKey(cartID), s.LockTTL, run)
	} else {
		err = run(ctx)
	}
	obs.IncCounter(obs.CartOperationsTotal, op, obs.Result(err))
	if err != nil && !isClientError(err) {
		s.Logger.Error().Err(err).Str("cart_id", cartID).Str("op", op).Msg("cart mutation failed")
	}
	return result, err
}

func (s *Service) resolve(ctx context.Context, req AddLineRequest) (menu.Item, pricing.Selection, error) {
	if s.Items == nil {
		return menu.Item{}, pricing.Selection{}, errors.New("cart item source not configured")
	}
	itemID := strings.TrimSpace(req.ItemID)
	item, ok, err := s.Items.MenuItem(ctx, itemID)
	if err != nil {
		return menu.Item{}, pricing.Selection{}, err
	}
	if !ok {
		return menu.Item{}, pricing.Selection{}, fmt.Errorf("%s: %w", itemID, ErrItemNotFound)
	}
	if !item.Available {
		return menu.Item{}, pricing.Selection{}, fmt.Errorf("%s: %w", itemID, ErrItemUnavailable)
	}

	var sel pricing.Selection
	if id := strings.TrimSpace(req.VariationID); id != "" {
		v, ok := item.Variation(id)
		if !ok {
			return menu.Item{}, pricing.Selection{}, fmt.Errorf("%w: variation %q not offered for %s", pricing.ErrInvalidSelection, id, item.ID)
		}
		sel.Variation = &v
	}
	sel.Flavor = strings.TrimSpace(req.Flavor)
	for _, a := range req.AddOns {
		addOn, ok := item.AddOn(strings.TrimSpace(a.ID))
		if !ok {
			return menu.Item{}, pricing.Selection{}, fmt.Errorf("%w: add-on %q not offered for %s", pricing.ErrInvalidSelection, a.ID, item.ID)
		}
		sel.AddOns = append(sel.AddOns, pricing.SelectedAddOn{AddOn: addOn, Count: a.Count})
	}
	return item, sel, nil
}

func isClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrLineNotFound) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrItemUnavailable) ||
		errors.Is(err, pricing.ErrInvalidSelection)
}
