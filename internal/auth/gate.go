package auth

import (
	"errors"

	"github.com/example/storefront/internal/apperror"
)

// Authenticate resolves a bearer token into claims. A missing, malformed or
// expired token is an Unauthenticated error.
func Authenticate(v Verifier, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperror.Unauthenticated("unauthorized")
	}
	claims, err := v.ValidateAccessToken(tokenString)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperror.Unauthenticated("token has expired")
		}
		return nil, apperror.Unauthenticated("invalid token")
	}
	return claims, nil
}

// Authorize is the access gate for mutation endpoints: it succeeds only for a
// valid token whose role claim is admin.
func Authorize(v Verifier, tokenString string) (*Claims, error) {
	claims, err := Authenticate(v, tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, apperror.Forbidden("forbidden")
	}
	return claims, nil
}
