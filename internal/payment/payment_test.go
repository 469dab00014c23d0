package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kedai/internal/cache"
)

type memStore struct {
	methods []Method
	lists   int
}

func (m *memStore) List(context.Context) ([]Method, error) {
	m.lists++
	return append([]Method(nil), m.methods...), nil
}

func (m *memStore) Save(_ context.Context, method Method) error {
	for i, existing := range m.methods {
		if existing.ID == method.ID {
			m.methods[i] = method
			return nil
		}
	}
	m.methods = append(m.methods, method)
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	for i, existing := range m.methods {
		if existing.ID == id {
			m.methods = append(m.methods[:i], m.methods[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func seeded() *memStore {
	return &memStore{methods: []Method{
		{ID: "gcash", Name: "GCash", AccountNumber: "09171234567", AccountName: "Tea Max", Active: true, SortOrder: 1},
		{ID: "maya", Name: "Maya", Active: false, SortOrder: 2},
		{ID: CashOnDelivery, Name: "Cash on Delivery", Active: true, SortOrder: 3},
	}}
}

func TestActiveFiltersAndCaches(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := seeded()
	svc := &Service{Store: store, Cache: cache.NewJSON(client, time.Minute)}
	ctx := context.Background()

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "gcash", active[0].ID)
	require.True(t, active[1].IsCashOnDelivery())

	_, err = svc.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, store.lists)

	_, err = svc.Save(ctx, Method{ID: " Maya ", Name: "Maya", Active: true, SortOrder: 2})
	require.NoError(t, err)
	active, err = svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
}

func TestResolve(t *testing.T) {
	svc := &Service{Store: seeded()}
	ctx := context.Background()

	m, err := svc.Resolve(ctx, "gcash")
	require.NoError(t, err)
	require.Equal(t, "GCash", m.Name)

	_, err = svc.Resolve(ctx, "maya")
	require.ErrorIs(t, err, ErrInactive)

	_, err = svc.Resolve(ctx, "paypal")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveValidates(t *testing.T) {
	svc := &Service{Store: seeded()}
	_, err := svc.Save(context.Background(), Method{ID: "bank-transfer"})
	require.Error(t, err)

	_, err = svc.Save(context.Background(), Method{ID: "bank-transfer", Name: "Bank", QRCodeURL: "not a url"})
	require.Error(t, err)
}

func TestHandlers(t *testing.T) {
	h := &Handler{Svc: &Service{Store: seeded()}}

	rec := httptest.NewRecorder()
	h.Active(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"account_number":"09171234567"`)
	require.NotContains(t, rec.Body.String(), `"maya"`)

	rec = httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/payment-methods", strings.NewReader(`{"id":"","name":""}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/payment-methods", strings.NewReader(`{"id":"bank-transfer","name":"BPI","active":true}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
}
