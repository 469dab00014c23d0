package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kedai/internal/cart"
	"github.com/noah-isme/backend-kedai/internal/payment"
	"github.com/noah-isme/backend-kedai/internal/settings"
)

type fakeCarts map[string]*cart.Cart

func (f fakeCarts) Get(_ context.Context, id string) (*cart.Cart, error) {
	c, ok := f[id]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return c, nil
}

type fakePayments map[string]payment.Method

func (f fakePayments) Resolve(_ context.Context, id string) (payment.Method, error) {
	m, ok := f[id]
	if !ok {
		return payment.Method{}, fmt.Errorf("%s: %w", id, payment.ErrNotFound)
	}
	if !m.Active {
		return payment.Method{}, fmt.Errorf("%s: %w", id, payment.ErrInactive)
	}
	return m, nil
}

type fakeSettings struct{ err error }

func (f fakeSettings) Get(context.Context) (settings.SiteSettings, error) {
	if f.err != nil {
		return settings.SiteSettings{}, f.err
	}
	s := settings.Defaults()
	s.SiteName = "Kedai"
	s.FacebookHandle = "kedai"
	return s, nil
}

type response struct {
	Data struct {
		Summary      string `json:"summary"`
		Total        string `json:"total"`
		ItemCount    int    `json:"itemCount"`
		Step         string `json:"step"`
		MessengerURL string `json:"messengerUrl"`
	} `json:"data"`
	Error struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newRouter(t *testing.T, site SettingsSource) http.Handler {
	t.Helper()
	methods := fakePayments{
		"gcash": {ID: "gcash", Name: "GCash", Active: true},
		"maya":  {ID: "maya", Name: "Maya"},
	}
	svc := &Service{
		Carts:    fakeCarts{"full": sampleCart(t), "empty": cart.New()},
		Payments: methods,
		Settings: site,
	}
	h := &Handler{Svc: svc}
	r := chi.NewRouter()
	r.Route("/carts/{id}", h.Mount(nil))
	return r
}

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	var out response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return rr, out
}

const pickupBody = `{"name":"Ana","contact":"0917","serviceType":"pickup","pickupTime":"15-20","paymentMethod":"gcash"}`

func TestCheckoutRendersSummary(t *testing.T) {
	router := newRouter(t, fakeSettings{})
	rr, out := post(t, router, "/carts/full/checkout", pickupBody)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "587", out.Data.Total)
	require.Equal(t, 3, out.Data.ItemCount)
	require.Equal(t, "payment", out.Data.Step)
	require.True(t, strings.HasPrefix(out.Data.Summary, "🛒 Kedai ORDER\n"))
	require.Contains(t, out.Data.Summary, "⏰ Pickup Time: 15-20 minutes\n")
	require.Contains(t, out.Data.Summary, "💳 Payment: GCash\n")
	require.True(t, strings.HasPrefix(out.Data.MessengerURL, "https://m.me/kedai?text="))
}

func TestCheckoutFallsBackToDefaultSettings(t *testing.T) {
	router := newRouter(t, fakeSettings{err: fmt.Errorf("db down")})
	rr, out := post(t, router, "/carts/full/checkout", pickupBody)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.HasPrefix(out.Data.Summary, "🛒 "+settings.Defaults().SiteName+" ORDER"))
}

func TestCheckoutErrors(t *testing.T) {
	router := newRouter(t, fakeSettings{})
	cases := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"empty cart", "/carts/empty/checkout", pickupBody, http.StatusUnprocessableEntity, "EMPTY_CART"},
		{"missing cart", "/carts/nope/checkout", pickupBody, http.StatusNotFound, "NOT_FOUND"},
		{"bad json", "/carts/full/checkout", `{`, http.StatusBadRequest, "BAD_REQUEST"},
		{"incomplete details", "/carts/full/checkout", `{"name":"Ana","serviceType":"delivery","paymentMethod":"gcash"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"no payment", "/carts/full/checkout", `{"name":"Ana","contact":"1","serviceType":"dine-in"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"inactive payment", "/carts/full/checkout", `{"name":"Ana","contact":"1","serviceType":"dine-in","paymentMethod":"maya"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"unknown payment", "/carts/full/checkout", `{"name":"Ana","contact":"1","serviceType":"dine-in","paymentMethod":"btc"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, out := post(t, router, tc.path, tc.body)
			require.Equal(t, tc.status, rr.Code)
			require.Equal(t, tc.code, out.Error.Code)
		})
	}
}

func TestCheckoutDetailsStep(t *testing.T) {
	router := newRouter(t, fakeSettings{})

	rr, out := post(t, router, "/carts/full/checkout/details", `{"name":"Ana","contact":"0917","serviceType":"delivery"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "required_if=ServiceType delivery", out.Error.Details["address"])

	rr, out = post(t, router, "/carts/full/checkout/details", `{"name":"Ana","contact":"0917","serviceType":"delivery","address":"12 Rizal St"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "payment", out.Data.Step)
}
