package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenPurpose string

const (
	PurposeAccess  TokenPurpose = "access"
	PurposeRefresh TokenPurpose = "refresh"
)

var (
	// ErrTokenExpired and ErrTokenInvalid are both unauthenticated-class at
	// the HTTP edge; they stay distinct so callers can log the difference.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenIdentity is the identity a verified token asserts.
type TokenIdentity struct {
	UserID   uuid.UUID
	Username string
}

// TokenIssuer abstracts token issuance and verification. Validity is
// currently determined by signature and expiry alone; keeping this behind
// an interface leaves room for a revocation store without touching the
// auth flow.
type TokenIssuer interface {
	IssueAccessToken(userID uuid.UUID, username string) (string, error)
	IssueRefreshToken(userID uuid.UUID, username string) (string, error)
	Verify(token string, purpose TokenPurpose) (*TokenIdentity, error)
}

type tokenClaims struct {
	Username string `json:"username"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService signs access and refresh tokens with separate secrets so
// one class can never be replayed as the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) IssueAccessToken(userID uuid.UUID, username string) (string, error) {
	return s.sign(userID, username, PurposeAccess, s.accessSecret, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(userID uuid.UUID, username string) (string, error) {
	return s.sign(userID, username, PurposeRefresh, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) sign(userID uuid.UUID, username string, purpose TokenPurpose, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username: username,
		Purpose:  string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *TokenService) Verify(tokenStr string, purpose TokenPurpose) (*TokenIdentity, error) {
	secret := s.accessSecret
	if purpose == PurposeRefresh {
		secret = s.refreshSecret
	}

	claims := &tokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.Purpose != string(purpose) {
		return nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &TokenIdentity{UserID: userID, Username: claims.Username}, nil
}
