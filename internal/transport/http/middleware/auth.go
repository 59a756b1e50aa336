package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/repository"
	"github.com/vleeko/soundwave/internal/service"
)

type contextKey string

const identityKey contextKey = "auth_identity"

// Identity is what the gate attaches to the request context once the
// caller is authenticated.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     domain.Role
}

// Auth verifies the bearer access token, re-resolves the user and rejects
// callers whose account is gone or still unverified. It never mutates
// persisted state.
func Auth(tokens service.TokenIssuer, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Missing or invalid token")
				return
			}

			identity, err := resolve(r.Context(), tokenStr, tokens, users)
			if err != nil {
				if errors.Is(err, service.ErrTokenExpired) {
					slog.Debug("rejected expired access token", "path", r.URL.Path)
				}
				unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth attaches an identity when a valid token is presented but
// lets anonymous requests through. Used on public routes that reveal more
// to owners.
func OptionalAuth(tokens service.TokenIssuer, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr, ok := bearerToken(r); ok {
				if identity, err := resolve(r.Context(), tokenStr, tokens, users); err == nil {
					r = r.WithContext(withIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin runs after Auth and gates admin-only routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok || identity.Role != domain.RoleAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":"FORBIDDEN","message":"Admin access required"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func resolve(ctx context.Context, tokenStr string, tokens service.TokenIssuer, users repository.UserRepository) (Identity, error) {
	claims, err := tokens.Verify(tokenStr, service.PurposeAccess)
	if err != nil {
		return Identity{}, err
	}

	user, err := users.GetByID(ctx, claims.UserID)
	if err != nil {
		return Identity{}, err
	}
	if user == nil || !user.IsVerified {
		return Identity{}, service.ErrTokenInvalid
	}

	return Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}

func withIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity panics when no identity is attached; only call it behind
// Auth.
func GetIdentity(ctx context.Context) Identity {
	return ctx.Value(identityKey).(Identity)
}

// IdentityFrom is the non-panicking variant for optional-auth routes.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}
