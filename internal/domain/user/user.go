package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/auth"
)

var (
	ErrUserNotFound       = apperror.NotFound("user")
	ErrEmailTaken         = apperror.New(apperror.KindConflict, "email is already registered")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthenticated, "invalid email or password")
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// Repository is the user store. Insert fails with ErrEmailTaken when the
// email is already present.
type Repository interface {
	Insert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateRole(ctx context.Context, id, role string) error
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the input and lower-cases the email.
func (in *RegisterInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = NormalizeEmail(in.Email)
}

func (in RegisterInput) Validate() error {
	if in.Username == "" {
		return apperror.Validation("username is required")
	}
	if in.Email == "" {
		return apperror.Validation("email is required")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return apperror.Validation("email is invalid")
	}
	if in.Password == "" {
		return apperror.Validation("password is required")
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
