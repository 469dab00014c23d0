package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kedai/internal/cart"
	"github.com/noah-isme/backend-kedai/internal/common"
	"github.com/noah-isme/backend-kedai/internal/obs"
	"github.com/noah-isme/backend-kedai/internal/payment"
	"github.com/noah-isme/backend-kedai/internal/pricing"
	"github.com/noah-isme/backend-kedai/internal/settings"
)

var (
	// ErrEmptyCart blocks checkout of a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrUnknownPaymentMethod marks a missing, unknown or inactive payment method.
	ErrUnknownPaymentMethod = errors.New("payment method unavailable")
)

// CartSource loads carts by id.
type CartSource interface {
	Get(ctx context.Context, id string) (*cart.Cart, error)
}

// PaymentResolver resolves the active payment method chosen by the customer.
type PaymentResolver interface {
	Resolve(ctx context.Context, id string) (payment.Method, error)
}

// SettingsSource supplies the site display settings.
type SettingsSource interface {
	Get(ctx context.Context) (settings.SiteSettings, error)
}

// Result is the outcome of a completed checkout.
type Result struct {
	Summary      string        `json:"summary"`
	Total        pricing.Money `json:"total"`
	ItemCount    int           `json:"itemCount"`
	Step         Step          `json:"step"`
	MessengerURL string        `json:"messengerUrl,omitempty"`
}

// Service composes the order summary for a stored cart.
type Service struct {
	Carts    CartSource
	Payments PaymentResolver
	Settings SettingsSource
	Logger   zerolog.Logger
}

// Details runs the details step for a cart and returns the wizard positioned
// on the payment step.
func (s *Service) Details(ctx context.Context, cartID string, info CustomerInfo) (Wizard, error) {
	if _, err := s.loadCart(ctx, cartID); err != nil {
		return Wizard{Info: info}, err
	}
	w := Wizard{Step: StepDetails, Info: info}
	if err := w.Advance(); err != nil {
		return w, err
	}
	return w, nil
}

// Checkout validates the customer input and renders the order summary.
func (s *Service) Checkout(ctx context.Context, cartID string, info CustomerInfo) (res Result, err error) {
	defer func() {
		obs.IncCounter(obs.CheckoutSummariesTotal, obs.Result(err))
	}()
	c, err := s.loadCart(ctx, cartID)
	if err != nil {
		return Result{}, err
	}
	w := Wizard{Step: StepDetails, Info: info}
	if err := w.Advance(); err != nil {
		return Result{}, err
	}
	info = w.Info
	if info.PaymentMethod == "" {
		return Result{}, paymentError(fmt.Errorf("payment method required: %w", ErrUnknownPaymentMethod))
	}
	method, err := s.Payments.Resolve(ctx, info.PaymentMethod)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) || errors.Is(err, payment.ErrInactive) {
			return Result{}, paymentError(fmt.Errorf("%w: %w", ErrUnknownPaymentMethod, err))
		}
		return Result{}, fmt.Errorf("resolve payment method: %w", err)
	}
	site, err := s.Settings.Get(ctx)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("site settings unavailable, using defaults")
		site = settings.Defaults()
	}
	summary := RenderOrderSummary(c, info, Options{
		SiteName:          site.SiteName,
		CurrencySymbol:    site.Currency,
		PaymentMethodName: method.Name,
	})
	return Result{
		Summary:      summary,
		Total:        c.Total(),
		ItemCount:    c.ItemCount(),
		Step:         StepPayment,
		MessengerURL: MessengerURL(site.FacebookHandle, summary),
	}, nil
}

func (s *Service) loadCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	if s == nil || s.Carts == nil {
		return nil, errors.New("checkout service not configured")
	}
	c, err := s.Carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return c, nil
}

func paymentError(err error) error {
	return common.Invalid("choose an available payment method", map[string]string{"paymentMethod": "required"}, err)
}
