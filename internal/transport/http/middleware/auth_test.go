package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/service"
)

// stubUserRepo implements just the lookup the middleware needs; the rest
// of repository.UserRepository is never called here.
type stubUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (r *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return r.users[id], nil
}

func (r *stubUserRepo) Create(context.Context, *domain.User) error          { return nil }
func (r *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, nil
}
func (r *stubUserRepo) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, nil
}
func (r *stubUserRepo) List(context.Context, int, int) ([]domain.User, int, error) {
	return nil, 0, nil
}
func (r *stubUserRepo) SetOTP(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (r *stubUserRepo) MarkVerified(context.Context, uuid.UUID) error              { return nil }
func (r *stubUserRepo) SetRole(context.Context, uuid.UUID, domain.Role) error      { return nil }
func (r *stubUserRepo) UpdateProfile(context.Context, *domain.User) error          { return nil }
func (r *stubUserRepo) UpdatePassword(context.Context, uuid.UUID, string) error    { return nil }
func (r *stubUserRepo) Delete(context.Context, uuid.UUID) error                    { return nil }
func (r *stubUserRepo) AddRecentlyPlayed(context.Context, uuid.UUID, uuid.UUID, time.Time) error {
	return nil
}
func (r *stubUserRepo) ListRecentlyPlayed(context.Context, uuid.UUID, int) ([]domain.Track, error) {
	return nil, nil
}

func newAuthFixture(t *testing.T) (*service.TokenService, *stubUserRepo, *domain.User) {
	t.Helper()
	tokens := service.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	user := &domain.User{
		ID:         uuid.New(),
		Username:   "alice",
		IsVerified: true,
		Role:       domain.RoleUser,
	}
	repo := &stubUserRepo{users: map[uuid.UUID]*domain.User{user.ID: user}}
	return tokens, repo, user
}

func echoIdentity(t *testing.T, got *Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	tokens, repo, user := newAuthFixture(t)
	token, err := tokens.IssueAccessToken(user.ID, user.Username)
	require.NoError(t, err)

	var got Identity
	handler := Auth(tokens, repo)(echoIdentity(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, domain.RoleUser, got.Role)
}

func TestAuth_Rejections(t *testing.T) {
	tokens, repo, user := newAuthFixture(t)

	expiredIssuer := service.NewTokenService("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	expired, err := expiredIssuer.IssueAccessToken(user.ID, user.Username)
	require.NoError(t, err)

	refresh, err := tokens.IssueRefreshToken(user.ID, user.Username)
	require.NoError(t, err)

	ghost, err := tokens.IssueAccessToken(uuid.New(), "ghost")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired},
		{"refresh token on access route", "Bearer " + refresh},
		{"deleted user", "Bearer " + ghost},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Auth(tokens, repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuth_UnverifiedUser(t *testing.T) {
	tokens, repo, user := newAuthFixture(t)
	user.IsVerified = false

	token, err := tokens.IssueAccessToken(user.ID, user.Username)
	require.NoError(t, err)

	handler := Auth(tokens, repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens, repo, user := newAuthFixture(t)
	token, err := tokens.IssueAccessToken(user.ID, user.Username)
	require.NoError(t, err)

	var got *Identity
	handler := OptionalAuth(tokens, repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := IdentityFrom(r.Context()); ok {
			got = &identity
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous passes through", func(t *testing.T) {
		got = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, got)
	})

	t.Run("bad token passes through anonymously", func(t *testing.T) {
		got = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, got)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		got = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.UserID)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin allowed", func(t *testing.T) {
		identity := Identity{UserID: uuid.New(), Username: "root", Role: domain.RoleAdmin}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(withIdentity(req.Context(), identity))
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("plain user forbidden", func(t *testing.T) {
		identity := Identity{UserID: uuid.New(), Username: "alice", Role: domain.RoleUser}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(withIdentity(req.Context(), identity))
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no identity forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
