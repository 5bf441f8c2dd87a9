package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/user"
)

const userColumns = `id, username, email, password_hash, role, created_at`

// UserStore implements user.Repository; email uniqueness is enforced by the
// table constraint.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Insert(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, user.NormalizeEmail(u.Email), u.PasswordHash, u.Role, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return apperror.Store("insert user", err)
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	return s.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", user.NormalizeEmail(email))
}

func (s *UserStore) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Store("find user", err)
	}
	return u, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id, role string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET role = $2 WHERE id = $1", id, role)
	if err != nil {
		return apperror.Store("update user role", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Store("update user role", err)
	}
	if n == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
