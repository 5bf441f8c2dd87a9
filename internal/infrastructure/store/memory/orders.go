package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain/order"
)

// OrderStore is an in-memory order collection
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]order.Order)}
}

// clone detaches the stored value from a caller's copy. Populated references
// are never stored.
func clone(o order.Order) order.Order {
	items := make([]order.Item, len(o.Items))
	for i, item := range o.Items {
		item.Product = nil
		items[i] = item
	}
	o.Items = items
	o.User = nil
	return o
}

func (s *OrderStore) Insert(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.ID] = clone(*o)
	return nil
}

func (s *OrderStore) FindByID(_ context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	c := clone(o)
	return &c, nil
}

func (s *OrderStore) FindAll(_ context.Context, filter order.Filter) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.Matches(&o) {
			c := clone(o)
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *OrderStore) UpdateStatus(_ context.Context, id string, status order.Status, at time.Time) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	s.orders[id] = o
	c := clone(o)
	return &c, nil
}

func (s *OrderStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(s.orders, id)
	return nil
}

// Len returns the number of stored orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
