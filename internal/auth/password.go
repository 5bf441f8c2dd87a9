package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/example/storefront/internal/apperror"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	maxPasswordLength = 72
)

var (
	ErrPasswordTooShort = apperror.New(apperror.KindValidation, "password must be at least 8 characters")
	ErrPasswordTooLong  = apperror.New(apperror.KindValidation, "password must be at most 72 bytes")
)

// PasswordHasher hashes passwords with bcrypt at a fixed cost
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher; cost outside bcrypt's range falls back to the default
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash hashes a password using bcrypt
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Check compares a password with its hash
func (h *PasswordHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
