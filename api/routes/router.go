package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"storefront-backend/api/controllers"
	"storefront-backend/api/middleware"
	"storefront-backend/internal/addresses"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/coupons"
	"storefront-backend/internal/orders"
	"storefront-backend/internal/settings"
	"storefront-backend/internal/wishlist"
	"storefront-backend/pkg/auth/session"
	"storefront-backend/pkg/config"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
	pkgredis "storefront-backend/pkg/redis"

	usersvc "storefront-backend/internal/users"
)

// RedisStore is the slice of the redis client the router depends on.
type RedisStore interface {
	pkgredis.IdempotencyStore
	controllers.Pinger
}

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Registry prometheus.Gatherer

	Users     usersvc.Service
	Catalog   catalog.Service
	Cart      cart.Service
	Coupons   coupons.Service
	Orders    orders.Service
	Addresses addresses.Service
	Wishlist  wishlist.Service
	Settings  settings.Service

	HTTPMetrics *metrics.HTTPMetrics
}

// NewRouter assembles the full route tree.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		p.HTTPMetrics.Middleware,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(p.Registry))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.GuestSession(logg),
			middleware.Idempotency(p.Redis, cfg.Checkout, logg),
		).Post("/register", controllers.AuthRegister(p.Users, logg))
		r.Post("/login", controllers.AuthLogin(p.Users, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Users, logg))
		r.Post("/logout", controllers.AuthLogout(p.Users, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(p.Catalog, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(p.Catalog, logg))
		r.Get("/categories", controllers.CategoryList(p.Catalog, logg))

		// Cart and coupon validation work for both signed-in users and
		// guests carrying an X-Guest-Session header.
		r.Group(func(r chi.Router) {
			r.Use(
				middleware.AuthOptional(cfg.JWT, p.Sessions, logg),
				middleware.GuestSession(logg),
			)
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.Cart, logg))
				r.Post("/items", controllers.CartAddItem(p.Cart, logg))
				r.Put("/items/{productId}", controllers.CartUpdateItem(p.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(p.Cart, logg))
				r.Delete("/", controllers.CartClear(p.Cart, logg))
			})
			r.Post("/coupons/validate", controllers.CouponValidate(p.Coupons, p.Cart, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, p.Sessions, logg),
				middleware.Idempotency(p.Redis, cfg.Checkout, logg),
			)

			r.Post("/checkout", controllers.Checkout(p.Orders, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderHistory(p.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(p.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(p.Orders, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(p.Addresses, logg))
				r.Post("/", controllers.AddressCreate(p.Addresses, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(p.Addresses, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(p.Addresses, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(p.Wishlist, logg))
				r.Post("/", controllers.WishlistAdd(p.Wishlist, logg))
				r.Delete("/{productId}", controllers.WishlistRemove(p.Wishlist, logg))
			})

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.Profile(p.Users, logg))
				r.Put("/", controllers.ProfileUpdate(p.Users, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, p.Sessions, logg),
			middleware.RequireRole("admin", logg),
			middleware.Idempotency(p.Redis, cfg.Checkout, logg),
		)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(p.Catalog, logg))
			r.Post("/", controllers.AdminProductCreate(p.Catalog, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(p.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminProductDeactivate(p.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCategoryCreate(p.Catalog, logg))
			r.Put("/{categoryId}", controllers.AdminCategoryUpdate(p.Catalog, logg))
		})
		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponList(p.Coupons, logg))
			r.Post("/", controllers.AdminCouponCreate(p.Coupons, logg))
			r.Put("/{couponId}", controllers.AdminCouponUpdate(p.Coupons, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(p.Orders, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderUpdateStatus(p.Orders, logg))
			r.Post("/{orderId}/payment", controllers.AdminOrderUpdatePayment(p.Orders, logg))
		})
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminSettingsList(p.Settings, logg))
			r.Put("/", controllers.AdminSettingsSet(p.Settings, logg))
		})
	})

	return r
}
