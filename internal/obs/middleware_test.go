package obs_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noah-isme/backend-kedai/internal/obs"
)

func storefrontRouter(mw func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/menu", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		v.Post("/carts/{id}/checkout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		v.Post("/carts/{id}/lines", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
	})
	return r
}

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("kedai", []float64{1, 10}, registry)
	router := storefrontRouter(obs.HTTPObs{Metrics: metrics}.Middleware)

	send := func(method, path string) int {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
		return rr.Code
	}
	require.Equal(t, http.StatusNoContent, send(http.MethodGet, "/health/ready"))
	require.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "/api/v1/carts/c-1/checkout"))
	require.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "/api/v1/carts/c-2/checkout"))

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/health/ready", obs.AreaHealth, "204")))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "/api/v1/carts/{id}/checkout", obs.AreaCheckout, "429")))
	require.Equal(t, 2, testutil.CollectAndCount(metrics.ReqDur))
	require.Zero(t, testutil.ToFloat64(metrics.InFlight))
}

func TestHTTPMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("kedai", nil, registry)
	second := obs.NewHTTPMetrics("kedai", nil, registry)
	require.Same(t, first.ReqTotal, second.ReqTotal)
	require.Same(t, first.ReqDur, second.ReqDur)
}

func TestParseBucketsCSV(t *testing.T) {
	require.Nil(t, obs.ParseBucketsCSV("  "))
	require.Equal(t, []float64{5, 25.5, 100}, obs.ParseBucketsCSV("5, 25.5,,abc,-1,0,100"))
}

func TestTracingMiddlewareNamesSpanAfterRoute(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	router := storefrontRouter(obs.TracingMiddleware)
	for _, path := range []string{"/api/v1/carts/c-42/checkout", "/api/v1/carts/c-7/lines"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	attrs := func(s sdktrace.ReadOnlySpan) map[string]string {
		out := map[string]string{}
		for _, kv := range s.Attributes() {
			out[string(kv.Key)] = kv.Value.Emit()
		}
		return out
	}

	checkout := spans[0]
	require.Equal(t, "POST /api/v1/carts/{id}/checkout", checkout.Name())
	require.Equal(t, obs.AreaCheckout, attrs(checkout)["kedai.area"])
	require.Equal(t, "c-42", attrs(checkout)["kedai.cart_id"])
	require.Equal(t, "429", attrs(checkout)["http.status_code"])
	require.Len(t, checkout.Events(), 1)
	require.Equal(t, "rate_limited", checkout.Events()[0].Name)

	lines := spans[1]
	require.Equal(t, "POST /api/v1/carts/{id}/lines", lines.Name())
	require.Equal(t, obs.AreaCart, attrs(lines)["kedai.area"])
	require.Equal(t, "c-7", attrs(lines)["kedai.cart_id"])
	require.Equal(t, "Error", lines.Status().Code.String())

	menu := spans[2]
	require.Equal(t, "GET /api/v1/menu", menu.Name())
	require.Equal(t, obs.AreaCatalog, attrs(menu)["kedai.area"])
	_, hasCart := attrs(menu)["kedai.cart_id"]
	require.False(t, hasCart)
}

func TestRequestLoggerTagsCartRoutes(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	router := storefrontRouter(obs.RequestLogger{Logger: logger}.Middleware)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/c-42/checkout", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "http_request", entry["message"])
	require.Equal(t, "/api/v1/carts/{id}/checkout", entry["route"])
	require.Equal(t, obs.AreaCheckout, entry["area"])
	require.Equal(t, "c-42", entry["cart_id"])
	require.Equal(t, "203.0.113.5", entry["client_ip"])
	require.Equal(t, float64(http.StatusTooManyRequests), entry["status"])
}
