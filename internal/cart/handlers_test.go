package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kedai/internal/lock"
	"github.com/noah-isme/backend-kedai/internal/pricing"
)

type envelope struct {
	Data struct {
		ID        string `json:"id"`
		ItemCount int    `json:"itemCount"`
		Total     string `json:"total"`
		Lines     []struct {
			ID         string `json:"id"`
			Quantity   int    `json:"quantity"`
			TotalPrice string `json:"totalPrice"`
		} `json:"lines"`
	} `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	item := latte()
	svc := &Service{
		Store:  NewMemoryStore(time.Hour),
		Items:  fakeItems{item.ID: item},
		Locker: &lock.Local{},
		Clock:  pricing.FixedClock(testNow),
	}
	h := &Handler{Svc: svc}
	r := chi.NewRouter()
	r.Route("/carts", func(c chi.Router) {
		h.Routes(c, func(next http.Handler) http.Handler { return next })
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return rr, env
}

func TestCartHTTPFlow(t *testing.T) {
	router := newTestRouter(t)

	rr, created := do(t, router, http.MethodPost, "/carts/", "")
	require.Equal(t, http.StatusCreated, rr.Code)
	id := created.Data.ID
	require.NotEmpty(t, id)

	rr, added := do(t, router, http.MethodPost, "/carts/"+id+"/lines", `{"itemId":"latte","quantity":2,"variationId":"lg","addOns":[{"id":"oat","count":1}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, added.Data.Lines, 1)
	require.Equal(t, "368", added.Data.Total)
	lineID := added.Data.Lines[0].ID

	rr, updated := do(t, router, http.MethodPatch, "/carts/"+id+"/lines/"+lineID, `{"quantity":1}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "184", updated.Data.Total)
	require.Equal(t, 1, updated.Data.ItemCount)

	rr, got := do(t, router, http.MethodGet, "/carts/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "184", got.Data.Lines[0].TotalPrice)

	rr, removed := do(t, router, http.MethodDelete, "/carts/"+id+"/lines/"+lineID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, removed.Data.Lines)
	require.Equal(t, "0", removed.Data.Total)
}

func TestCartHTTPErrors(t *testing.T) {
	router := newTestRouter(t)
	_, created := do(t, router, http.MethodPost, "/carts/", "")
	id := created.Data.ID

	rr, env := do(t, router, http.MethodGet, "/carts/unknown", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, env = do(t, router, http.MethodPost, "/carts/"+id+"/lines", `{"itemId":"latte","variationId":"xl"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "BAD_REQUEST", env.Error.Code)

	rr, _ = do(t, router, http.MethodPost, "/carts/"+id+"/lines", `{"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = do(t, router, http.MethodPost, "/carts/"+id+"/lines", `{"itemId":"latte","quantity":-1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr, env = do(t, router, http.MethodPatch, "/carts/"+id+"/lines/missing", `{"quantity":2}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}
