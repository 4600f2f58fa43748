package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cramsheets/cramsheets-backend/api/controllers"
	"github.com/cramsheets/cramsheets-backend/api/middleware"
	authsvc "github.com/cramsheets/cramsheets-backend/internal/auth"
	cartsvc "github.com/cramsheets/cramsheets-backend/internal/cart"
	catalogsvc "github.com/cramsheets/cramsheets-backend/internal/catalog"
	checkoutsvc "github.com/cramsheets/cramsheets-backend/internal/checkout"
	entsvc "github.com/cramsheets/cramsheets-backend/internal/entitlements"
	ordersvc "github.com/cramsheets/cramsheets-backend/internal/orders"
	paymentsvc "github.com/cramsheets/cramsheets-backend/internal/payments"
	"github.com/cramsheets/cramsheets-backend/pkg/config"
	"github.com/cramsheets/cramsheets-backend/pkg/db"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
	"github.com/cramsheets/cramsheets-backend/pkg/metrics"
	pkgredis "github.com/cramsheets/cramsheets-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	authService authsvc.Service,
	catalogService catalogsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService ordersvc.Service,
	paymentsService paymentsvc.Service,
	entitlementsService entsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/", controllers.CatalogList(catalogService, logg))
		r.Get("/{itemId}", controllers.CatalogDetail(catalogService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Get("/count", controllers.CartCount(cartService, logg))
			r.Post("/items", controllers.CartAdd(cartService, logg))
			r.Delete("/items/{itemId}", controllers.CartRemove(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Post("/{orderId}/payment-request", controllers.OrderPaymentRequest(paymentsService, logg))
		})

		r.Get("/purchases", controllers.PurchasesList(entitlementsService, logg))
		r.Route("/items/{itemId}", func(r chi.Router) {
			r.Get("/access", controllers.ItemAccess(entitlementsService, logg))
			r.Get("/download", controllers.ItemDownload(entitlementsService, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireRole("seller", logg))
			r.Get("/items", controllers.SellerListItems(catalogService, logg))
			r.Post("/items", controllers.SellerCreateItem(catalogService, logg))
			r.Patch("/items/{itemId}", controllers.SellerUpdateItem(catalogService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/pending", controllers.AdminPendingOrders(ordersService, logg))
			r.Post("/{orderId}/approve", controllers.AdminApproveOrder(paymentsService, logg))
			r.Post("/{orderId}/reject", controllers.AdminRejectOrder(paymentsService, logg))
		})
		r.Post("/items/{itemId}/moderate", controllers.AdminModerateItem(catalogService, logg))
	})

	return r
}
