package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront-backend/internal/addresses"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/coupons"
	"storefront-backend/internal/orders"
	"storefront-backend/internal/settings"
	usersvc "storefront-backend/internal/users"
	pkgAuth "storefront-backend/pkg/auth"
	"storefront-backend/pkg/config"
	"storefront-backend/pkg/db/models"
	"storefront-backend/pkg/enums"
	"storefront-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubRedis struct{}

func (stubRedis) Ping(context.Context) error { return nil }
func (stubRedis) Get(context.Context, string) (string, error) {
	return "", redis.Nil
}
func (stubRedis) SetNX(context.Context, string, any, time.Duration) (bool, error) {
	return true, nil
}
func (stubRedis) IdempotencyKey(scope, id string) string { return "idem:" + scope + ":" + id }
func (stubRedis) Del(context.Context, ...string) error   { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubCatalog struct{}

func (stubCatalog) GetProduct(context.Context, uuid.UUID) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubCatalog) GetProductBySlug(context.Context, string) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubCatalog) ListProducts(context.Context, catalog.ProductFilter) (*catalog.ProductPage, error) {
	return &catalog.ProductPage{}, nil
}
func (stubCatalog) ListCategories(context.Context, bool) ([]models.Category, error) {
	return nil, nil
}
func (stubCatalog) CreateProduct(context.Context, catalog.CreateProductInput) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubCatalog) UpdateProduct(context.Context, uuid.UUID, catalog.UpdateProductInput) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubCatalog) DeactivateProduct(context.Context, uuid.UUID) error { return nil }
func (stubCatalog) CreateCategory(context.Context, catalog.CategoryInput) (*models.Category, error) {
	return &models.Category{}, nil
}
func (stubCatalog) UpdateCategory(context.Context, uuid.UUID, catalog.CategoryInput) (*models.Category, error) {
	return &models.Category{}, nil
}

type stubCart struct{}

func (stubCart) Get(context.Context, cart.Owner) (*cart.View, error) {
	return &cart.View{Subtotal: decimal.Zero}, nil
}
func (stubCart) AddItem(context.Context, cart.Owner, uuid.UUID, int) (*cart.View, error) {
	return &cart.View{Subtotal: decimal.Zero}, nil
}
func (stubCart) UpdateItem(context.Context, cart.Owner, uuid.UUID, int) (*cart.View, error) {
	return &cart.View{Subtotal: decimal.Zero}, nil
}
func (stubCart) RemoveItem(context.Context, cart.Owner, uuid.UUID) (*cart.View, error) {
	return &cart.View{Subtotal: decimal.Zero}, nil
}
func (stubCart) Clear(context.Context, cart.Owner) error                 { return nil }
func (stubCart) MergeGuestCart(context.Context, string, uuid.UUID) error { return nil }

type stubCoupons struct{}

func (stubCoupons) Validate(context.Context, string, decimal.Decimal) (*coupons.Quote, error) {
	return &coupons.Quote{}, nil
}
func (stubCoupons) ValidateTx(context.Context, *gorm.DB, string, decimal.Decimal) (*coupons.Quote, error) {
	return &coupons.Quote{}, nil
}
func (stubCoupons) List(context.Context, int, int) ([]models.Coupon, int64, error) {
	return nil, 0, nil
}
func (stubCoupons) Create(context.Context, coupons.CreateCouponInput) (*models.Coupon, error) {
	return &models.Coupon{}, nil
}
func (stubCoupons) Update(context.Context, uuid.UUID, coupons.UpdateCouponInput) (*models.Coupon, error) {
	return &models.Coupon{}, nil
}

type stubOrders struct{}

func (stubOrders) PlaceOrder(context.Context, orders.PlaceOrderInput) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrders) Cancel(context.Context, orders.CancelInput) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrders) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrders) UpdatePaymentStatus(context.Context, uuid.UUID, enums.PaymentStatus) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrders) GetForUser(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}
func (stubOrders) History(context.Context, uuid.UUID, int, int) (*orders.Page, error) {
	return &orders.Page{}, nil
}
func (stubOrders) ListAll(context.Context, orders.ListFilter) (*orders.Page, error) {
	return &orders.Page{}, nil
}

type stubAddresses struct{}

func (stubAddresses) List(context.Context, uuid.UUID) ([]models.Address, error) { return nil, nil }
func (stubAddresses) Get(context.Context, uuid.UUID, uuid.UUID) (*models.Address, error) {
	return &models.Address{}, nil
}
func (stubAddresses) Create(context.Context, uuid.UUID, addresses.Input) (*models.Address, error) {
	return &models.Address{}, nil
}
func (stubAddresses) Update(context.Context, uuid.UUID, uuid.UUID, addresses.Input) (*models.Address, error) {
	return &models.Address{}, nil
}
func (stubAddresses) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubWishlist struct{}

func (stubWishlist) List(context.Context, uuid.UUID) ([]models.WishlistItem, error) {
	return nil, nil
}
func (stubWishlist) Add(context.Context, uuid.UUID, uuid.UUID) (*models.WishlistItem, error) {
	return &models.WishlistItem{}, nil
}
func (stubWishlist) Remove(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubUsers struct{}

func (stubUsers) Register(context.Context, usersvc.RegisterInput) (*models.User, *usersvc.AuthTokens, error) {
	return &models.User{}, &usersvc.AuthTokens{}, nil
}
func (stubUsers) Login(context.Context, usersvc.LoginInput) (*models.User, *usersvc.AuthTokens, error) {
	return &models.User{}, &usersvc.AuthTokens{}, nil
}
func (stubUsers) Refresh(context.Context, string, string) (*usersvc.AuthTokens, error) {
	return &usersvc.AuthTokens{}, nil
}
func (stubUsers) Logout(context.Context, string) error { return nil }
func (stubUsers) Profile(context.Context, uuid.UUID) (*models.User, error) {
	return &models.User{}, nil
}
func (stubUsers) UpdateProfile(context.Context, uuid.UUID, usersvc.UpdateProfileInput) (*models.User, error) {
	return &models.User{}, nil
}

type stubSettings struct{}

func (stubSettings) CheckoutSnapshot(context.Context, *gorm.DB) (settings.CheckoutSettings, error) {
	return settings.CheckoutSettings{}, nil
}
func (stubSettings) List(context.Context) ([]models.Setting, error) { return nil, nil }
func (stubSettings) Set(context.Context, string, string) (*models.Setting, error) {
	return &models.Setting{}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "storefront-test",
			ExpirationMinutes: 5,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(RouterParams{
		Config:    cfg,
		Logger:    logg,
		DB:        stubPinger{},
		Redis:     stubRedis{},
		Sessions:  stubSessions{},
		Users:     stubUsers{},
		Catalog:   stubCatalog{},
		Cart:      stubCart{},
		Coupons:   stubCoupons{},
		Orders:    stubOrders{},
		Addresses: stubAddresses{},
		Wishlist:  stubWishlist{},
		Settings:  stubSettings{},
	})
}

func mintToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterPublicRoutes(t *testing.T) {
	router := newTestRouter(t, testRouterConfig())

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/api/v1/products", http.StatusOK},
		{http.MethodGet, "/api/v1/categories", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, rec.Code)
		}
	}
}

func TestRouterGuestCartAccess(t *testing.T) {
	router := newTestRouter(t, testRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Guest-Session", uuid.NewString())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for guest cart fetch, got %d", rec.Code)
	}
}

func TestRouterAuthenticatedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter(t, testRouterConfig())

	for _, path := range []string{"/api/v1/orders", "/api/v1/addresses", "/api/v1/wishlist", "/api/v1/me"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestRouterAdminRoutesRequireAdminRole(t *testing.T) {
	cfg := testRouterConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer on admin route, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.UserRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin on admin route, got %d", rec.Code)
	}
}
