package service

import (
	"crypto/rand"
	"math/big"
	"time"
)

const otpDigits = 6

// OTPGenerator issues short-lived numeric passcodes for email verification.
type OTPGenerator struct {
	ttl time.Duration
}

func NewOTPGenerator(ttl time.Duration) *OTPGenerator {
	return &OTPGenerator{ttl: ttl}
}

// Generate returns a uniformly random digit string. Each digit is drawn
// independently from crypto/rand, so codes are not derivable from time or
// user identity.
func (g *OTPGenerator) Generate() (string, error) {
	code := make([]byte, otpDigits)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

func (g *OTPGenerator) ExpiryFrom(now time.Time) time.Time {
	return now.Add(g.ttl)
}

// IsOTPValid reports whether a submitted code matches the stored state.
// Comparison is exact and case-sensitive; the expiry boundary is inclusive
// (now == expiry is still valid). Any missing piece of state means invalid.
func IsOTPValid(submitted string, stored *string, expiresAt *time.Time, now time.Time) bool {
	if stored == nil || expiresAt == nil || submitted == "" {
		return false
	}
	if submitted != *stored {
		return false
	}
	return !now.After(*expiresAt)
}
