// Package httpapi exposes the storefront sessions over JSON/HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/health"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/ratelimit"
	"github.com/noah-isme/toko-storefront/internal/security"
	"github.com/noah-isme/toko-storefront/internal/session"
)

// SessionHeader carries the shopper session id.
const SessionHeader = "X-Session-ID"

// Config wires the router.
type Config struct {
	Sessions       *session.Manager
	Logger         zerolog.Logger
	AllowedOrigins []string
	// SubmitLimiter throttles checkout submissions; nil disables limiting.
	SubmitLimiter ratelimit.Limiter
	Health        health.Handler
	HTTPMetrics   *obs.HTTPMetrics
	// Gatherer backs /metrics; nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
	// TracingService names server spans; empty disables request tracing.
	TracingService string
}

// NewRouter builds the storefront HTTP handler.
func NewRouter(cfg Config) http.Handler {
	h := &Handler{Sessions: cfg.Sessions}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers{Enable: true, NoStore: true}.Middleware)
	r.Use(security.BodyLimit{Max: common.MaxBodyBytes}.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.TracingService != "" {
		r.Use(obs.TracingMiddleware(cfg.TracingService))
	}
	if cfg.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: cfg.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: cfg.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.AllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/health/live", cfg.Health.Live)
	r.Get("/health/ready", cfg.Health.Ready)

	submitLimit := ratelimit.Handler{
		Limiter: cfg.SubmitLimiter,
		Key:     ratelimit.KeyBySessionOrIP,
		OnError: func(err error) {
			cfg.Logger.Warn().Err(err).Msg("ratelimit_store_error")
		},
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Post("/sessions", h.CreateSession)
		v.Get("/products", h.ListProducts)

		v.Group(func(s chi.Router) {
			s.Use(h.RequireSession)
			s.Delete("/sessions", h.DeleteSession)
			s.Get("/notifications", h.Notifications)

			s.Route("/products/{id}", func(p chi.Router) {
				p.Get("/", h.GetProduct)
				p.Post("/select", h.SelectVariant)
				p.Put("/quantity", h.SetProductQuantity)
				p.Post("/cart", h.AddToCart)
				p.Post("/wishlist", h.AddToWishlist)
			})

			s.Get("/cart", h.GetCart)
			s.Patch("/cart/items/*", h.UpdateCartItem)
			s.Delete("/cart/items/*", h.RemoveCartItem)
			s.Get("/wishlist", h.GetWishlist)

			s.Get("/checkout", h.GetCheckout)
			s.Patch("/checkout/form", h.UpdateCheckoutForm)
			s.With(submitLimit.Middleware).Post("/checkout/submit", h.SubmitOrder)
			s.Get("/checkout/status", h.CheckoutStatus)
		})
	})
	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
