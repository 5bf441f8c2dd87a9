package memory

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/cart"
)

// CartStore keeps carts in process memory
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]cart.Cart)}
}

func (s *CartStore) Load(_ context.Context, id string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, nil
	}
	c.Items = append([]cart.Item(nil), c.Items...)
	return &c, nil
}

func (s *CartStore) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *c
	stored.Items = append([]cart.Item(nil), c.Items...)
	s.carts[c.ID] = stored
	return nil
}

func (s *CartStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, id)
	return nil
}
