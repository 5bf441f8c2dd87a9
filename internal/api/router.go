package api

import (
	"log"
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/metrics"
	"github.com/example/storefront/internal/tracing"
)

// RouterConfig wires the handlers into the HTTP surface. Metrics and DB are
// optional.
type RouterConfig struct {
	Handlers *Handlers
	Auth     *AuthHandlers
	Verifier auth.Verifier
	Metrics  *metrics.Metrics
	DB       Pinger
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	h := cfg.Handlers

	requireAuth := middleware.AuthMiddleware(cfg.Verifier)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.Verifier)
	requireAdmin := middleware.RequireAdmin(cfg.Verifier)

	handle := func(pattern, name string, handler http.Handler) {
		if cfg.Metrics != nil {
			handler = cfg.Metrics.Instrument(name, handler)
		}
		mux.Handle(pattern, handler)
	}

	// Products
	handle("GET /api/products", "products.list", http.HandlerFunc(h.GetProducts))
	handle("GET /api/products/{id}", "products.get", http.HandlerFunc(h.GetProduct))
	handle("POST /api/products", "products.create", requireAdmin(http.HandlerFunc(h.CreateProduct)))
	handle("PUT /api/products/{id}", "products.update", requireAdmin(http.HandlerFunc(h.UpdateProduct)))
	handle("DELETE /api/products/{id}", "products.delete", requireAdmin(http.HandlerFunc(h.DeleteProduct)))
	handle("GET /api/categories", "categories.list", http.HandlerFunc(h.GetCategories))

	// Orders
	handle("GET /api/orders", "orders.list", requireAuth(http.HandlerFunc(h.GetOrders)))
	handle("GET /api/orders/{id}", "orders.get", requireAuth(http.HandlerFunc(h.GetOrder)))
	handle("POST /api/orders", "orders.place", optionalAuth(http.HandlerFunc(h.PlaceOrder)))
	handle("PUT /api/orders/{id}", "orders.update", requireAdmin(http.HandlerFunc(h.UpdateOrderStatus)))
	handle("DELETE /api/orders/{id}", "orders.delete", requireAdmin(http.HandlerFunc(h.DeleteOrder)))

	// Cart
	handle("GET /api/cart", "cart.get", optionalAuth(http.HandlerFunc(h.GetCart)))
	handle("DELETE /api/cart", "cart.clear", optionalAuth(http.HandlerFunc(h.ClearCart)))
	handle("POST /api/cart/items", "cart.add", optionalAuth(http.HandlerFunc(h.AddToCart)))
	handle("PUT /api/cart/items/{productId}", "cart.update", optionalAuth(http.HandlerFunc(h.UpdateCartItem)))
	handle("DELETE /api/cart/items/{productId}", "cart.remove", optionalAuth(http.HandlerFunc(h.RemoveFromCart)))
	handle("POST /api/cart/checkout", "cart.checkout", requireAuth(http.HandlerFunc(h.Checkout)))

	// Auth
	if cfg.Auth != nil {
		handle("POST /api/auth/register", "auth.register", http.HandlerFunc(cfg.Auth.Register))
		handle("POST /api/auth/login", "auth.login", http.HandlerFunc(cfg.Auth.Login))
		handle("POST /api/auth/logout", "auth.logout", http.HandlerFunc(cfg.Auth.Logout))
		handle("GET /api/auth/me", "auth.me", requireAuth(http.HandlerFunc(cfg.Auth.Me)))
	}

	// Health
	handle("GET /healthz", "healthz", http.HandlerFunc(Liveness))
	handle("GET /health", "health", Readiness(cfg.DB))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return tracing.Handler(withLogging(mux), "storefront.api")
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := metrics.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)
		log.Printf("[API] %s %s %d %s", r.Method, r.URL.Path, rec.Status(), time.Since(start).Round(time.Microsecond))
	})
}
