package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scrimteamx/Card-Ghar/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	basePath    string
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers

	catalog   RouteRegistrar
	checkout  RouteRegistrar
	purchases RouteRegistrar
	wishlist  RouteRegistrar
	loyalty   RouteRegistrar
	game      RouteRegistrar
	support   RouteRegistrar
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix = "/api/v1"
	defaultTimeout   = 60 * time.Second
)

// NewRouter constructs the chi router with shared middleware and the
// storefront route groups.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath: defaultAPIPrefix,
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	if cfg.health == nil {
		cfg.health = NewHealthHandlers(nil)
	}
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("route_not_found", fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	r.Route(cfg.basePath, func(api chi.Router) {
		mount := func(registrar RouteRegistrar, name string) {
			if registrar != nil {
				registrar(api)
				return
			}
			api.HandleFunc("/"+name+"/*", func(w http.ResponseWriter, req *http.Request) {
				httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes not implemented", name), http.StatusNotImplemented))
			})
		}
		mount(cfg.catalog, "products")
		mount(cfg.checkout, "checkout")
		mount(cfg.purchases, "purchases")
		mount(cfg.wishlist, "wishlist")
		mount(cfg.loyalty, "loyalty")
		mount(cfg.game, "game")
		mount(cfg.support, "support")
	})

	return r
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the probe handlers.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithCatalogRoutes configures the product catalog endpoints.
func WithCatalogRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.catalog = reg
	}
}

// WithCheckoutRoutes configures the checkout flow endpoints.
func WithCheckoutRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.checkout = reg
	}
}

// WithPurchaseRoutes configures the purchase history endpoints.
func WithPurchaseRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.purchases = reg
	}
}

// WithWishlistRoutes configures the wishlist endpoints.
func WithWishlistRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.wishlist = reg
	}
}

// WithLoyaltyRoutes configures the loyalty endpoints.
func WithLoyaltyRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.loyalty = reg
	}
}

// WithGameRoutes configures the minigame endpoints.
func WithGameRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.game = reg
	}
}

// WithSupportRoutes configures the support chat endpoints.
func WithSupportRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.support = reg
	}
}
