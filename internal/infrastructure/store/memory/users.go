package memory

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/user"
)

// UserStore is an in-memory user collection with a unique email index
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]user.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Insert(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := user.NormalizeEmail(u.Email)
	if _, taken := s.byEmail[email]; taken {
		return user.ErrEmailTaken
	}
	s.users[u.ID] = *u
	s.byEmail[email] = u.ID
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *UserStore) UpdateRole(_ context.Context, id, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}
