package api

import (
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/user"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	users  *user.Service
	issuer auth.Issuer
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(users *user.Service, issuer auth.Issuer) *AuthHandlers {
	return &AuthHandlers{
		users:  users,
		issuer: issuer,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

// Register handles user registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, err)
		return
	}

	newUser, err := h.users.Register(r.Context(), req)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, newUser)
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondJSONError(w, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, u)
}

// Logout clears the access token cookie. Bearer tokens stay valid until they expire.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondMessage(w, http.StatusOK, "Logout successful")
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondJSONError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// respondWithToken signs an access token for u, sets it as a cookie for
// browsers, and returns it in the body for API clients.
func (h *AuthHandlers) respondWithToken(w http.ResponseWriter, r *http.Request, status int, u *user.User) {
	token, expiresAt, err := h.issuer.GenerateAccessToken(u.ID, u.Username, u.Email, u.Role)
	if err != nil {
		respondJSONError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	respondJSON(w, status, AuthResponse{Token: token, ExpiresAt: expiresAt, User: u})
}
