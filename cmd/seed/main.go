package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/infrastructure/store/postgres"
	"github.com/example/storefront/internal/seed"
)

func main() {
	catalogPath := flag.String("catalog", os.Getenv("SEED_FILE"), "YAML catalog to load (default: bundled catalog)")
	replace := flag.Bool("replace", false, "delete existing products before loading")
	skipProducts := flag.Bool("skip-products", false, "only provision the admin user")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load(false)
	if err != nil {
		log.Fatalf("[Seed] %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("[Seed] DATABASE_URL environment variable is required")
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Seed] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("[Seed] Failed to migrate schema: %v", err)
	}
	log.Println("[Seed] Schema ready")

	seeder := seed.NewSeeder(
		product.NewService(postgres.NewProductStore(db)),
		user.NewService(postgres.NewUserStore(db), auth.NewPasswordHasher(cfg.BcryptCost)),
	)

	if !*skipProducts {
		catalog, err := loadCatalog(*catalogPath)
		if err != nil {
			log.Fatalf("[Seed] %v", err)
		}
		if _, err := seeder.Products(ctx, catalog, *replace); err != nil {
			log.Fatalf("[Seed] %v", err)
		}
	}

	admin := user.RegisterInput{
		Username: getEnv("ADMIN_USERNAME", "admin"),
		Email:    getEnv("ADMIN_EMAIL", "admin@storefront.local"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	if admin.Password == "" {
		log.Println("[Seed] ADMIN_PASSWORD not set, skipping admin user")
		return
	}
	if _, err := seeder.Admin(ctx, admin); err != nil {
		log.Fatalf("[Seed] %v", err)
	}
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.Parse(f)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
