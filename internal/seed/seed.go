// Package seed loads a YAML product catalog and provisions the admin account.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/money"
)

//go:embed catalog.yaml
var defaultCatalog string

// ProductSpec is one catalog entry. Prices are strings so YAML never turns
// them into floats.
type ProductSpec struct {
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Price         string  `yaml:"price"`
	OriginalPrice string  `yaml:"originalPrice"`
	Category      string  `yaml:"category"`
	StockCount    int     `yaml:"stockCount"`
	Rating        float64 `yaml:"rating"`
	Reviews       int     `yaml:"reviews"`
	Image         string  `yaml:"image"`
}

type Catalog struct {
	Products []ProductSpec `yaml:"products"`
}

// DefaultCatalog returns the catalog bundled with the binary.
func DefaultCatalog() (*Catalog, error) {
	return Parse(strings.NewReader(defaultCatalog))
}

// Parse decodes a catalog, rejecting unknown keys.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// Input converts the entry into a create request.
func (s ProductSpec) Input() (product.CreateInput, error) {
	price, err := money.Parse(s.Price)
	if err != nil {
		return product.CreateInput{}, fmt.Errorf("product %q: price: %w", s.Name, err)
	}
	in := product.CreateInput{
		Name:        s.Name,
		Description: s.Description,
		Price:       &price,
		Category:    s.Category,
		StockCount:  s.StockCount,
		Rating:      s.Rating,
		Reviews:     s.Reviews,
		Image:       s.Image,
	}
	if s.OriginalPrice != "" {
		original, err := money.Parse(s.OriginalPrice)
		if err != nil {
			return product.CreateInput{}, fmt.Errorf("product %q: originalPrice: %w", s.Name, err)
		}
		in.OriginalPrice = &original
	}
	return in, nil
}

// Result counts what a seeding run changed.
type Result struct {
	Created int
	Skipped int
	Removed int
}

type Seeder struct {
	products *product.Service
	users    *user.Service
}

func NewSeeder(products *product.Service, users *user.Service) *Seeder {
	return &Seeder{products: products, users: users}
}

// Products inserts the catalog. With replace, every existing product is
// removed first. Otherwise products whose name already exists are skipped,
// so repeated runs do not create duplicates.
func (s *Seeder) Products(ctx context.Context, catalog *Catalog, replace bool) (Result, error) {
	var res Result

	existing, err := s.products.List(ctx, product.Filter{}, product.DefaultSort)
	if err != nil {
		return res, err
	}
	names := make(map[string]bool, len(existing))
	for _, p := range existing {
		if replace {
			if err := s.products.Delete(ctx, p.ID); err != nil {
				return res, fmt.Errorf("remove %s: %w", p.ID, err)
			}
			res.Removed++
			continue
		}
		names[strings.ToLower(p.Name)] = true
	}

	for _, spec := range catalog.Products {
		if names[strings.ToLower(strings.TrimSpace(spec.Name))] {
			res.Skipped++
			continue
		}
		in, err := spec.Input()
		if err != nil {
			return res, err
		}
		if _, err := s.products.Create(ctx, in); err != nil {
			return res, fmt.Errorf("create %q: %w", spec.Name, err)
		}
		names[strings.ToLower(strings.TrimSpace(spec.Name))] = true
		res.Created++
	}

	log.Printf("[Seed] Products: %d created, %d skipped, %d removed", res.Created, res.Skipped, res.Removed)
	return res, nil
}

// Admin creates the admin account or promotes the existing one.
func (s *Seeder) Admin(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	u, created, err := s.users.EnsureAdmin(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		log.Printf("[Seed] Admin user created: %s", u.Email)
	} else {
		log.Printf("[Seed] Admin user ready: %s", u.Email)
	}
	return u, nil
}
