package obs

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Areas group routes for metric labels and span attributes.
const (
	AreaCatalog  = "catalog"
	AreaCart     = "cart"
	AreaCheckout = "checkout"
	AreaAdmin    = "admin"
	AreaHealth   = "health"
	AreaOther    = "other"
)

// routeOf resolves the matched chi pattern for r. Root middleware only sees
// the full pattern once the router has run, so callers invoke it after next.
func routeOf(r *http.Request, fallback string) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if route := rc.RoutePattern(); route != "" {
			return route
		}
	}
	return fallback
}

// cartIDOf returns the {id} URL parameter of cart and checkout routes.
func cartIDOf(r *http.Request, area string) string {
	if area != AreaCart && area != AreaCheckout {
		return ""
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.URLParam("id")
	}
	return ""
}

// AreaOf maps a route pattern to the storefront area serving it.
func AreaOf(pattern string) string {
	p := strings.TrimPrefix(pattern, "/api/v1")
	switch {
	case strings.HasPrefix(p, "/health"):
		return AreaHealth
	case strings.HasPrefix(p, "/carts/{id}/checkout"):
		return AreaCheckout
	case strings.HasPrefix(p, "/carts"):
		return AreaCart
	case strings.HasPrefix(p, "/admin"):
		return AreaAdmin
	case p == "/menu", strings.HasPrefix(p, "/menu/"),
		strings.HasPrefix(p, "/categories"),
		strings.HasPrefix(p, "/settings"),
		strings.HasPrefix(p, "/payment-methods"):
		return AreaCatalog
	default:
		return AreaOther
	}
}
