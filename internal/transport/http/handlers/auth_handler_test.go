package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/notification"
	"github.com/vleeko/soundwave/internal/service"
)

// fakeUserRepo backs the auth handler tests with a real AuthService on top
// of in-memory state.
type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(context.Context, int, int) ([]domain.User, int, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) SetOTP(_ context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	user := r.users[id]
	user.OTPCode = &code
	user.OTPExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	user := r.users[id]
	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) SetRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	r.users[id].Role = role
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	stored := r.users[user.ID]
	stored.Profile = user.Profile
	stored.Preferences = user.Preferences
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.users[id].PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) AddRecentlyPlayed(context.Context, uuid.UUID, uuid.UUID, time.Time) error {
	return nil
}

func (r *fakeUserRepo) ListRecentlyPlayed(context.Context, uuid.UUID, int) ([]domain.Track, error) {
	return nil, nil
}

type recordingMailer struct {
	sent []notification.SendEmailParams
}

func (m *recordingMailer) SendEmail(_ context.Context, params notification.SendEmailParams) error {
	m.sent = append(m.sent, params)
	return nil
}

type authFixture struct {
	handler *AuthHandler
	repo    *fakeUserRepo
	mailer  *recordingMailer
	mux     *http.ServeMux
}

func newAuthFixture() *authFixture {
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	tokens := service.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	svc := service.NewAuthService(repo, tokens, service.NewOTPGenerator(15*time.Minute), mailer)
	handler := NewAuthHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", handler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", handler.Login)
	mux.HandleFunc("POST /api/v1/auth/verify-otp", handler.VerifyOTP)
	mux.HandleFunc("POST /api/v1/auth/resend-otp", handler.ResendOTP)
	mux.HandleFunc("POST /api/v1/auth/refresh-token", handler.RefreshToken)

	return &authFixture{handler: handler, repo: repo, mailer: mailer, mux: mux}
}

func (f *authFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "no error object in %s", rec.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

func (f *authFixture) register(t *testing.T) *domain.User {
	t.Helper()
	rec := f.post(t, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user, err := f.repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestAuthHandler_Register(t *testing.T) {
	f := newAuthFixture()

	rec := f.post(t, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.NotContains(t, body, "access_token", "registration must not authenticate")
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, false, user["is_verified"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "otp_code")

	require.Len(t, f.mailer.sent, 1)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	f := newAuthFixture()

	rec := f.post(t, "/api/v1/auth/register", map[string]string{
		"username": "a!",
		"email":    "not-an-email",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestAuthHandler_Register_Conflicts(t *testing.T) {
	f := newAuthFixture()
	f.register(t)

	rec := f.post(t, "/api/v1/auth/register", map[string]string{
		"username": "someone_else",
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_TAKEN", errorCode(t, rec))

	rec = f.post(t, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"email":    "else@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USERNAME_TAKEN", errorCode(t, rec))
}

func TestAuthHandler_VerifyOTPAndLogin(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t)

	// Login before verification.
	rec := f.post(t, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NEEDS_VERIFICATION", errorCode(t, rec))

	// Wrong code.
	wrong := "000000"
	if *user.OTPCode == wrong {
		wrong = "000001"
	}
	rec = f.post(t, "/api/v1/auth/verify-otp", map[string]string{
		"email": "alice@example.com", "otp": wrong,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_OTP", errorCode(t, rec))

	// Right code yields the first token pair.
	rec = f.post(t, "/api/v1/auth/verify-otp", map[string]string{
		"email": "alice@example.com", "otp": *user.OTPCode,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	// Login now succeeds.
	rec = f.post(t, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.NotEmpty(t, body["access_token"])
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture()
	f.register(t)

	unknown := f.post(t, "/api/v1/auth/login", map[string]string{
		"email": "ghost@example.com", "password": "hunter22",
	})
	wrongPass := f.post(t, "/api/v1/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, unknown))
	assert.Equal(t, errorCode(t, unknown), errorCode(t, wrongPass),
		"unknown email and wrong password must look the same")
}

func TestAuthHandler_ResendOTP(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t)

	rec := f.post(t, "/api/v1/auth/resend-otp", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.mailer.sent, 2)

	rec = f.post(t, "/api/v1/auth/resend-otp", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Verify, then resending is rejected.
	stored, err := f.repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	rec = f.post(t, "/api/v1/auth/verify-otp", map[string]string{
		"email": "alice@example.com", "otp": *stored.OTPCode,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.post(t, "/api/v1/auth/resend-otp", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ALREADY_VERIFIED", errorCode(t, rec))
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	f := newAuthFixture()
	user := f.register(t)

	rec := f.post(t, "/api/v1/auth/verify-otp", map[string]string{
		"email": "alice@example.com", "otp": *user.OTPCode,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	refresh := body["refresh_token"].(string)
	access := body["access_token"].(string)

	rec = f.post(t, "/api/v1/auth/refresh-token", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["access_token"])

	// Access tokens do not refresh.
	rec = f.post(t, "/api/v1/auth/refresh-token", map[string]string{"refresh_token": access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.post(t, "/api/v1/auth/refresh-token", map[string]string{"refresh_token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.post(t, "/api/v1/auth/refresh-token", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A deleted account cannot refresh.
	require.NoError(t, f.repo.Delete(context.Background(), user.ID))
	rec = f.post(t, "/api/v1/auth/refresh-token", map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
