// Package memory provides in-process stores used by tests and by the API
// when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain/product"
)

// ProductStore is an in-memory catalog
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]product.Product
	now      func() time.Time
}

func NewProductStore() *ProductStore {
	return &ProductStore{
		products: make(map[string]product.Product),
		now:      time.Now,
	}
}

func (s *ProductStore) FindAll(_ context.Context, filter product.Filter, sort product.Sort) ([]*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*product.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Matches(&p) {
			c := p
			result = append(result, &c)
		}
	}
	sort.Apply(result)
	return result, nil
}

func (s *ProductStore) FindByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return &p, nil
}

func (s *ProductStore) Insert(_ context.Context, p *product.Product) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *p
	stored.Normalize()
	s.products[stored.ID] = stored
	return &stored, nil
}

func (s *ProductStore) UpdateByID(_ context.Context, id string, patch product.Patch) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = s.now().UTC()
	s.products[id] = p
	return &p, nil
}

func (s *ProductStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *ProductStore) AdjustStock(_ context.Context, id string, delta int) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	if p.StockCount+delta < 0 {
		return nil, product.ErrInsufficientStock
	}
	p.StockCount += delta
	p.Normalize()
	p.UpdatedAt = s.now().UTC()
	s.products[id] = p
	return &p, nil
}
