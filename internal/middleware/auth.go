package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"gatecheck/internal/domain"
)

// TokenAuthenticator resolves a bearer credential to a known account.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*domain.User, *domain.Claims, error)
}

// Authenticator guards routes behind bearer-token authentication. On success
// the caller's identity is stored in the request context.
type Authenticator struct {
	broker TokenAuthenticator
	logger *slog.Logger
}

func NewAuthenticator(broker TokenAuthenticator, logger *slog.Logger) *Authenticator {
	return &Authenticator{broker: broker, logger: logger}
}

// Middleware returns 401 unless the request carries a valid bearer token for
// a known account.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			user, _, err := a.broker.Authenticate(r.Context(), strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				a.logger.Debug("authentication failed", "error", err)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := domain.WithIdentity(r.Context(), domain.ContextIdentity{
				Username: user.Username,
				IsAdmin:  user.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns 403 unless the authenticated caller is an admin. Must
// run inside Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := domain.IdentityFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "missing bearer token")
			return
		}
		if !identity.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"code":    http.StatusForbidden,
				"message": "admin privileges required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": msg,
	})
}
