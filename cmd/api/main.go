package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kedai/internal/cache"
	"github.com/noah-isme/backend-kedai/internal/cart"
	"github.com/noah-isme/backend-kedai/internal/catalog"
	"github.com/noah-isme/backend-kedai/internal/checkout"
	"github.com/noah-isme/backend-kedai/internal/common"
	"github.com/noah-isme/backend-kedai/internal/config"
	"github.com/noah-isme/backend-kedai/internal/db"
	"github.com/noah-isme/backend-kedai/internal/health"
	"github.com/noah-isme/backend-kedai/internal/lock"
	"github.com/noah-isme/backend-kedai/internal/obs"
	"github.com/noah-isme/backend-kedai/internal/payment"
	"github.com/noah-isme/backend-kedai/internal/ratelimit"
	"github.com/noah-isme/backend-kedai/internal/security"
	"github.com/noah-isme/backend-kedai/internal/session"
	"github.com/noah-isme/backend-kedai/internal/settings"
)

const serviceName = obs.DefaultServiceName

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "kedai")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = serviceName

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store:  catalog.PGStore{DB: pool},
		Cache:  cache.NewJSON(redisClient, cfg.CatalogCacheTTL),
		Logger: logger.With().Str("component", "catalog").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService})

	settingsSvc := &settings.Service{
		Store:  settings.PGStore{DB: pool},
		Cache:  cache.NewJSON(redisClient, cfg.SettingsCacheTTL),
		Logger: logger.With().Str("component", "settings").Logger(),
	}
	settingsHandler := &settings.Handler{Svc: settingsSvc}

	paymentSvc := &payment.Service{
		Store:  payment.PGStore{DB: pool},
		Cache:  cache.NewJSON(redisClient, cfg.SettingsCacheTTL),
		Logger: logger.With().Str("component", "payment").Logger(),
	}
	paymentHandler := &payment.Handler{Svc: paymentSvc}

	cartSvc := &cart.Service{
		Store:   cart.RedisStore{R: redisClient, TTL: cfg.CartTTL},
		Items:   catalogService,
		Locker:  lock.Locker{R: redisClient},
		LockTTL: cfg.CartLockTTL,
		Logger:  logger.With().Str("component", "cart").Logger(),
	}
	cartHandler := &cart.Handler{Svc: cartSvc}

	checkoutHandler := &checkout.Handler{Svc: &checkout.Service{
		Carts:    cartSvc,
		Payments: paymentSvc,
		Settings: settingsSvc,
		Logger:   logger.With().Str("component", "checkout").Logger(),
	}}

	sessionSvc, err := session.NewService(session.Config{
		Secret:       cfg.SessionSecret,
		PasswordHash: cfg.AdminPasswordHash,
		TTL:          cfg.SessionTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise session service")
	}
	csrf := security.CSRF{SessionCookie: cfg.SessionCookie, Secure: cfg.CookieSecure}
	sessionMiddleware := session.Middleware{Service: sessionSvc, Cookie: cfg.SessionCookie}
	sessionHandler := &session.Handler{
		Service:        sessionSvc,
		Middleware:     sessionMiddleware,
		CSRF:           csrf,
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: cfg.CookieSameSite,
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	loginWindow, err := ratelimit.NewRedisFixedWindow(redisClient, "rl:login:")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise login limiter")
	}
	limitFailed := func(err error) {
		logger.Warn().Err(err).Msg("rate limiter unavailable")
	}
	loginLimit := ratelimit.Handler{
		Limiter: loginWindow,
		Config: ratelimit.Config{
			Scope:  "login",
			Key:    ratelimit.ByClientIP("admin-login:"),
			Window: cfg.RateLimitLoginWindow,
			Max:    cfg.RateLimitLoginMax,
		},
		OnError: limitFailed,
	}
	checkoutLimit := ratelimit.Handler{
		Limiter: ratelimit.NewSlidingWindow(redisClient, "rl:checkout:"),
		Config: ratelimit.Config{
			Scope:  "checkout",
			Key:    ratelimit.ByClientIP("checkout:"),
			Window: cfg.RateLimitCheckoutWindow,
			Max:    cfg.RateLimitCheckoutMax,
		},
		OnError: limitFailed,
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{
		Enable:     cfg.SecurityHeadersEnabled,
		EnableHSTS: cfg.CookieSecure,
		HSTSMaxAge: envInt("SECURE_HSTS_MAX_AGE", 31536000),
	}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.Deps{DB: pool, Redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		catalogHandler.PublicRoutes(v)
		v.Get("/settings", settingsHandler.Get)
		v.Get("/payment-methods", paymentHandler.Active)

		v.Route("/carts", func(c chi.Router) {
			cartHandler.Routes(c, idem.Middleware, checkoutHandler.Mount(checkoutLimit.Middleware))
		})

		v.Route("/admin", func(admin chi.Router) {
			sessionHandler.Routes(admin, loginLimit.Middleware)
			admin.Group(func(g chi.Router) {
				g.Use(sessionMiddleware.RequireAdmin)
				g.Use(csrf.Middleware)
				catalogHandler.AdminRoutes(g)
				g.Route("/payment-methods", paymentHandler.AdminRoutes)
				g.Put("/settings", settingsHandler.Update)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serve(srv, logger)
}

// serve runs srv until SIGINT or SIGTERM, then drains in-flight requests.
func serve(srv *http.Server, logger zerolog.Logger) {
	stop, release := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer release()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
		return
	case <-stop.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), envDurationMillis("SHUTDOWN_TIMEOUT_MS", 15000))
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
