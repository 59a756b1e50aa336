package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vleeko/soundwave/internal/domain"
	"github.com/vleeko/soundwave/internal/notification"
	"github.com/vleeko/soundwave/internal/repository"
)

var (
	ErrEmailTaken        = errors.New("email already taken")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidCreds      = errors.New("invalid email or password")
	ErrNeedsVerification = errors.New("account not verified")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyVerified   = errors.New("account already verified")
	ErrOTPMismatch       = errors.New("verification code does not match")
	ErrOTPExpired        = errors.New("verification code expired or missing")
	ErrOTPDelivery       = errors.New("could not deliver verification code")
)

// AuthService orchestrates registration, OTP verification, login and token
// refresh. Accounts move Unregistered -> Unverified -> Verified and never
// back.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	otp      *OTPGenerator
	mailer   notification.EmailSender
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, otp *OTPGenerator, mailer notification.EmailSender) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		otp:      otp,
		mailer:   mailer,
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User *domain.User `json:"user"`
	TokenPair
}

// Register creates an unverified account and delivers its first OTP. No
// tokens are returned: the account cannot authenticate until verified.
// OTP delivery failure is surfaced because the user cannot proceed
// without the code.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	existing, err = s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	code, err := s.otp.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating otp: %w", err)
	}

	now := time.Now()
	expiresAt := s.otp.ExpiryFrom(now)
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   false,
		Role:         domain.RoleUser,
		OTPCode:      &code,
		OTPExpiresAt: &expiresAt,
		Preferences:  domain.Preferences{FavoriteGenres: []string{}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := s.mailer.SendEmail(ctx, notification.OTPEmail(email, username, code)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOTPDelivery, err)
	}

	return user, nil
}

// VerifyOTP transitions an account to Verified and returns its first token
// pair. The stored code is cleared on success, so a second call with the
// same code fails.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	if !IsOTPValid(code, user.OTPCode, user.OTPExpiresAt, now) {
		if user.HasOTP() && !now.After(*user.OTPExpiresAt) {
			return nil, ErrOTPMismatch
		}
		return nil, ErrOTPExpired
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("marking user verified: %w", err)
	}
	user.IsVerified = true
	user.OTPCode = nil
	user.OTPExpiresAt = nil

	// Best effort: a lost welcome email must not fail verification.
	if err := s.mailer.SendEmail(ctx, notification.WelcomeEmail(user.Email, user.Username)); err != nil {
		slog.Error("sending welcome email", "user_id", user.ID, "error", err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, TokenPair: *pair}, nil
}

// ResendOTP regenerates and redelivers the passcode, superseding any prior
// one. Resending to a verified account is a rejected operation, not a
// silent no-op.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	code, err := s.otp.Generate()
	if err != nil {
		return fmt.Errorf("generating otp: %w", err)
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, code, s.otp.ExpiryFrom(time.Now())); err != nil {
		return fmt.Errorf("storing otp: %w", err)
	}

	if err := s.mailer.SendEmail(ctx, notification.OTPEmail(user.Email, user.Username, code)); err != nil {
		return fmt.Errorf("%w: %w", ErrOTPDelivery, err)
	}
	return nil
}

// Login never reveals whether the email or the password was wrong. A
// correct password on an unverified account gets its own error so clients
// can route to the OTP screen.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCreds
	}

	if !verifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCreds
	}

	if !user.IsVerified {
		return nil, ErrNeedsVerification
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, TokenPair: *pair}, nil
}

// Refresh verifies a refresh token, re-resolves the user and issues a
// fresh pair. The old refresh token is not invalidated server side; the
// client is expected to discard it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	identity, err := s.tokens.Verify(refreshToken, PurposeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return s.issuePair(user)
}

func (s *AuthService) issuePair(user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
