// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/infrastructure/kafka"
)

const minJWTSecretLength = 32

// Config carries environment-driven settings shared by the binaries.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// DatabaseURL empty means in-memory stores.
	DatabaseURL string
	// RedisURL empty means carts are kept in process memory.
	RedisURL       string
	CartKeyPrefix  string
	CartTTL        time.Duration
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaGroupID   string
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	BcryptCost     int
	Pricing        cart.Pricing
	StrictStatus   bool

	TracingExporter string
	OTLPEndpoint    string
	ServiceName     string

	SMTPHost string
	SMTPPort string
	MailFrom string
}

// Load reads environment variables, applies defaults, and validates them.
// requireSecret is false for binaries that never verify tokens.
func Load(requireSecret bool) (Config, error) {
	cfg := Config{
		HTTPAddr:        envDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:        strings.TrimSpace(os.Getenv("REDIS_URL")),
		CartKeyPrefix:   envDefault("CART_KEY_PREFIX", "storefront:cart"),
		KafkaBrokers:    kafka.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      envDefault("KAFKA_TOPIC", kafka.DefaultOrderTopic),
		KafkaGroupID:    envDefault("KAFKA_GROUP_ID", "storefront-notifier"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTIssuer:       envDefault("JWT_ISSUER", "storefront"),
		StrictStatus:    isTruthy(os.Getenv("ORDER_STRICT_TRANSITIONS")),
		TracingExporter: strings.ToLower(envDefault("TRACING_EXPORTER", "none")),
		OTLPEndpoint:    envDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:     envDefault("OTEL_SERVICE_NAME", "storefront"),
		SMTPHost:        envDefault("SMTP_HOST", "localhost"),
		SMTPPort:        envDefault("SMTP_PORT", "1025"),
		MailFrom:        envDefault("MAIL_FROM", "noreply@storefront.local"),
	}

	var err error
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CartTTL, err = envDuration("CART_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = envDuration("ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = envInt("BCRYPT_COST", 10); err != nil {
		return Config{}, err
	}
	if cfg.Pricing, err = loadPricing(); err != nil {
		return Config{}, err
	}

	if requireSecret {
		if cfg.JWTSecret == "" {
			return Config{}, fmt.Errorf("JWT_SECRET environment variable is required")
		}
		if len(cfg.JWTSecret) < minJWTSecretLength {
			return Config{}, fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
		}
	}

	switch cfg.TracingExporter {
	case "none", "stdout", "otlp":
	default:
		return Config{}, fmt.Errorf("TRACING_EXPORTER must be one of none, stdout, otlp")
	}
	return cfg, nil
}

func loadPricing() (cart.Pricing, error) {
	p := cart.DefaultPricing()
	p.Currency = strings.ToUpper(envDefault("CART_CURRENCY", p.Currency))

	fields := []struct {
		key      string
		dst      *decimal.Decimal
		maxValue decimal.Decimal
	}{
		{"CART_FREE_SHIPPING_THRESHOLD", &p.FreeShippingThreshold, decimal.Decimal{}},
		{"CART_SHIPPING_FEE", &p.ShippingFee, decimal.Decimal{}},
		{"CART_TAX_RATE", &p.TaxRate, decimal.NewFromInt(1)},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(os.Getenv(f.key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return cart.Pricing{}, fmt.Errorf("%s must be a non-negative decimal", f.key)
		}
		if !f.maxValue.IsZero() && d.GreaterThan(f.maxValue) {
			return cart.Pricing{}, fmt.Errorf("%s must not exceed %s", f.key, f.maxValue)
		}
		*f.dst = d
	}
	return p, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
