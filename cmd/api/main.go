package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/infrastructure/cache"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store/memory"
	"github.com/example/storefront/internal/infrastructure/store/postgres"
	"github.com/example/storefront/internal/metrics"
	"github.com/example/storefront/internal/tracing"
)

type stores struct {
	products product.Repository
	orders   order.Repository
	users    user.Repository
	db       *sql.DB
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(true)
	if err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront API")
	log.Println("[API] ========================================")
	log.Printf("[API] Pricing: %s, free shipping over %s, fee %s, tax %s",
		cfg.Pricing.Currency, cfg.Pricing.FreeShippingThreshold, cfg.Pricing.ShippingFee, cfg.Pricing.TaxRate)
	log.Printf("[API] Tracing: %s", cfg.TracingExporter)

	shutdownTracing, err := tracing.Setup(ctx, cfg.ServiceName, cfg.TracingExporter, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("[API] Failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("[API] Tracing shutdown error: %v", err)
		}
	}()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	if st.db != nil {
		defer st.db.Close()
	}

	carts, closeCarts, err := openCartStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	defer closeCarts()

	m := metrics.New()
	var publisher order.Publisher = order.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
		log.Printf("[API] Kafka: %v (topic %s)", cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		log.Println("[API] Kafka: disabled, order events are dropped")
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)

	// Initialize domain services
	productSvc := product.NewService(st.products)
	orderSvc := order.NewService(st.orders, st.products, st.users, m.Publisher(publisher), cfg.Pricing)
	if cfg.StrictStatus {
		orderSvc.WithPolicy(order.StrictTransitions)
		log.Println("[API] Order status transitions: strict")
	}
	cartSvc := cart.NewService(carts, st.products, cfg.Pricing)
	userSvc := user.NewService(st.users, auth.NewPasswordHasher(cfg.BcryptCost))

	routerCfg := api.RouterConfig{
		Handlers: api.NewHandlers(productSvc, orderSvc, cartSvc, checkout.NewService(cartSvc, orderSvc)),
		Auth:     api.NewAuthHandlers(userSvc, jwtService),
		Verifier: jwtService,
		Metrics:  m,
	}
	if st.db != nil {
		routerCfg.DB = st.db
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Println("[API] ========================================")
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		log.Println("[API] ========================================")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
	cancel()
}

// openStores connects to PostgreSQL when DATABASE_URL is set and falls back
// to in-memory stores otherwise.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.DatabaseURL == "" {
		log.Println("[API] Storage: in-memory (DATABASE_URL not set)")
		return stores{
			products: memory.NewProductStore(),
			orders:   memory.NewOrderStore(),
			users:    memory.NewUserStore(),
		}, nil
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return stores{}, err
	}
	log.Println("[API] Storage: PostgreSQL")
	return stores{
		products: postgres.NewProductStore(db),
		orders:   postgres.NewOrderStore(db),
		users:    postgres.NewUserStore(db),
		db:       db,
	}, nil
}

func openCartStore(ctx context.Context, cfg config.Config) (cart.Store, func(), error) {
	if cfg.RedisURL == "" {
		log.Println("[API] Carts: in-memory (REDIS_URL not set)")
		return memory.NewCartStore(), func() {}, nil
	}

	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[API] Carts: Redis (ttl %s)", cfg.CartTTL)
	return cache.NewCartStore(client, cfg.CartKeyPrefix, cfg.CartTTL), func() { client.Close() }, nil
}
