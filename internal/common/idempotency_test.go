package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestIdemRejectsReplayPerPath(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	h := Idem{R: client, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(path, key string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusCreated, send("/carts/a/lines", "k1"))
	require.Equal(t, http.StatusConflict, send("/carts/a/lines", "k1"))
	require.Equal(t, http.StatusCreated, send("/carts/b/lines", "k1"))
	require.Equal(t, http.StatusCreated, send("/carts/a/lines", ""))
	require.Equal(t, 3, calls)

	mr.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusCreated, send("/carts/a/lines", "k1"))
}

func TestIdemReleasesKeyAfterServerError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fail := true
	h := Idem{R: client}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/carts", nil)
		req.Header.Set("Idempotency-Key", "retry-me")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}
	require.Equal(t, http.StatusInternalServerError, do())
	fail = false
	require.Equal(t, http.StatusOK, do())
	require.Equal(t, http.StatusConflict, do())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.1, 70.41.3.18"}, "192.0.2.1:1234", "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "192.0.2.1:1234", "198.51.100.2"},
		{"remote addr fallback", nil, "198.51.100.3:8080", "198.51.100.3"},
		{"bare remote addr", nil, "198.51.100.4", "198.51.100.4"},
		{"garbage forwarded hop skipped", map[string]string{"X-Forwarded-For": "unknown, 203.0.113.9"}, "192.0.2.1:1234", "203.0.113.9"},
		{"garbage forwarded falls to real ip", map[string]string{"X-Forwarded-For": "bogus", "X-Real-IP": "198.51.100.7"}, "192.0.2.1:1234", "198.51.100.7"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:443", "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://kedai.example", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			req.RemoteAddr = tt.remoteAddr
			require.Equal(t, tt.want, ClientIP(req))
		})
	}
}
