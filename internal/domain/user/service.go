package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/auth"
)

// Service handles registration, login and role changes
type Service struct {
	repo   Repository
	hasher *auth.PasswordHasher
	now    func() time.Time
}

// NewService creates a new user service
func NewService(repo Repository, hasher *auth.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher, now: time.Now}
}

// Register creates a user with the default role
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	return s.create(ctx, in, auth.RoleUser)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role string) (*User, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}

	log.Printf("[Users] Registered %s (%s) with role %s", u.ID, u.Email, u.Role)
	return u, nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Check(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// EnsureAdmin promotes the account registered under email, or creates it with
// the admin role. The password of an existing account is left unchanged.
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) (*User, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, NormalizeEmail(in.Email))
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, false, nil
		}
		if err := s.repo.UpdateRole(ctx, existing.ID, auth.RoleAdmin); err != nil {
			return nil, false, fmt.Errorf("promote %s: %w", existing.Email, err)
		}
		existing.Role = auth.RoleAdmin
		log.Printf("[Users] Existing user promoted to admin: %s", existing.Email)
		return existing, false, nil
	case errors.Is(err, ErrUserNotFound):
		u, err := s.create(ctx, in, auth.RoleAdmin)
		if err != nil {
			return nil, false, err
		}
		return u, true, nil
	default:
		return nil, false, err
	}
}
