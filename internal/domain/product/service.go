package product

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the products matching filter ordered by sort.
func (s *Service) List(ctx context.Context, filter Filter, sort Sort) ([]*Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return []*Product{}, nil
	}
	products, err := s.repo.FindAll(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Category is a catalog category with the number of products filed under it.
type Category struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
	InStockCount int    `json:"inStockCount"`
}

// Categories derives the category list from the catalog. Names differing only
// in case are merged under the first spelling seen.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	products, err := s.repo.FindAll(ctx, Filter{}, DefaultSort)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	index := make(map[string]int)
	categories := []Category{}
	for _, p := range products {
		key := strings.ToLower(p.Category)
		i, ok := index[key]
		if !ok {
			i = len(categories)
			index[key] = i
			categories = append(categories, Category{Name: p.Category})
		}
		categories[i].ProductCount++
		if p.InStock {
			categories[i].InStockCount++
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	return categories, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	p, err := in.Build(s.now().UTC())
	if err != nil {
		return nil, err
	}
	p.ID = uuid.New().String()

	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	log.Printf("[Catalog] Product created: %s (%s)", created.ID, created.Name)
	return created, nil
}

// Update applies patch after checking that the merged record still satisfies
// the product invariants.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Product, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	patch.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	log.Printf("[Catalog] Product deleted: %s", id)
	return nil
}
