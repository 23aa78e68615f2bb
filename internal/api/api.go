// Package api assembles the services, REST handlers and router of the store.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	cartapp "github.com/dwikikusuma/shoe-store/internal/cart/app"
	carthttp "github.com/dwikikusuma/shoe-store/internal/cart/httpapi"
	catalogapp "github.com/dwikikusuma/shoe-store/internal/catalog/app"
	cataloghttp "github.com/dwikikusuma/shoe-store/internal/catalog/httpapi"
	checkoutapp "github.com/dwikikusuma/shoe-store/internal/checkout/app"
	checkouthttp "github.com/dwikikusuma/shoe-store/internal/checkout/httpapi"
	checkoutadapter "github.com/dwikikusuma/shoe-store/internal/checkout/infra/adapter"
	orderapp "github.com/dwikikusuma/shoe-store/internal/order/app"
	orderhttp "github.com/dwikikusuma/shoe-store/internal/order/httpapi"
	paymentapp "github.com/dwikikusuma/shoe-store/internal/payment/app"
	wishlistapp "github.com/dwikikusuma/shoe-store/internal/wishlist/app"
	wishlisthttp "github.com/dwikikusuma/shoe-store/internal/wishlist/httpapi"
	"github.com/dwikikusuma/shoe-store/pkg/httpx"
	"github.com/dwikikusuma/shoe-store/pkg/idempotency"
	"github.com/dwikikusuma/shoe-store/pkg/metrics"
)

type Options struct {
	Currency       string
	Gateway        paymentapp.Gateway
	Idempotency    idempotency.Store
	Registry       *prometheus.Registry
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

type API struct {
	Catalog  *catalogapp.Service
	Cart     *cartapp.Service
	Wishlist *wishlistapp.Service
	Checkout *checkoutapp.Service
	Orders   *orderapp.Service
	Payments *paymentapp.Service

	Handler http.Handler
}

func New(b Backend, opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	catalog := catalogapp.NewService(b.Products)
	cart := cartapp.NewService(b.Carts, catalog)
	wishlist := wishlistapp.NewService(b.Wishlists, catalog)
	orders := orderapp.NewService(b.OrderUoW, b.Orders, log.With(slog.String("component", "orders")))
	checkout := checkoutapp.NewService(
		b.CheckoutUoW,
		checkoutadapter.NewCartServiceReader(cart),
		checkoutadapter.NewCatalogServiceReader(catalog),
		checkoutapp.Options{Currency: opts.Currency, Logger: log.With(slog.String("component", "checkout"))},
	)
	payments := paymentapp.NewService(orders, opts.Gateway, log.With(slog.String("component", "payments")))

	a := &API{
		Catalog:  catalog,
		Cart:     cart,
		Wishlist: wishlist,
		Checkout: checkout,
		Orders:   orders,
		Payments: payments,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(httpx.Instrument(metrics.NewServerMetrics(opts.Registry, "api")))
	r.Use(httpx.Identify)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := b.Ping(r.Context()); err != nil {
			log.Warn("readiness check failed", slog.Any("err", err))
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(opts.Registry))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))

		cataloghttp.NewHandler(catalog, log).Routes(r)
		carthttp.NewHandler(cart, log).Routes(r)
		wishlisthttp.NewHandler(wishlist, log).Routes(r)
		checkouthttp.NewHandler(checkout, opts.Idempotency, metrics.NewCheckoutMetrics(opts.Registry), log).Routes(r)
		orderhttp.NewHandler(orders, payments, log).Routes(r)
	})

	a.Handler = r
	return a
}
