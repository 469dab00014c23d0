package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartOperationsTotal counts cart mutations by operation and outcome.
	CartOperationsTotal *prometheus.CounterVec
	// CheckoutSummariesTotal counts rendered order summaries by outcome.
	CheckoutSummariesTotal *prometheus.CounterVec
	// CatalogCacheTotal counts storefront menu cache lookups by result.
	CatalogCacheTotal *prometheus.CounterVec
	// AdminLoginsTotal counts admin login attempts by outcome.
	AdminLoginsTotal *prometheus.CounterVec
	// RateLimitedTotal counts requests rejected by the login and checkout limits.
	RateLimitedTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartOperationsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of cart operations by outcome.",
		}, []string{"op", "result"}))
		CheckoutSummariesTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_summaries_total",
			Help:      "Count of order summary renders by outcome.",
		}, []string{"result"}))
		CatalogCacheTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Count of catalog cache lookups by result.",
		}, []string{"result"}))
		AdminLoginsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_logins_total",
			Help:      "Count of admin login attempts by outcome.",
		}, []string{"result"}))
		RateLimitedTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Count of requests rejected by a rate limit, by scope.",
		}, []string{"scope"}))
	})
}

// IncCounter increments vec for the given labels when the collector has been
// registered. Packages call it unconditionally so tests need no registry.
func IncCounter(vec *prometheus.CounterVec, labels ...string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labels...).Inc()
}

// Result maps an error to the conventional "ok"/"error" label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
