package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		errs := ValidateRegister("alice_99", "alice@example.com", "hunter22")
		assert.False(t, errs.HasErrors(), "%v", errs)
	})

	cases := []struct {
		name     string
		username string
		email    string
		password string
		field    string
	}{
		{"missing username", "", "alice@example.com", "hunter22", "username"},
		{"short username", "al", "alice@example.com", "hunter22", "username"},
		{"long username", strings.Repeat("a", 31), "alice@example.com", "hunter22", "username"},
		{"bad characters", "alice!", "alice@example.com", "hunter22", "username"},
		{"missing email", "alice", "", "hunter22", "email"},
		{"bad email", "alice", "not-an-email", "hunter22", "email"},
		{"missing password", "alice", "alice@example.com", "", "password"},
		{"short password", "alice", "alice@example.com", "12345", "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateRegister(tc.username, tc.email, tc.password)
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestValidateVerifyOTP(t *testing.T) {
	assert.False(t, ValidateVerifyOTP("alice@example.com", "123456").HasErrors())

	for _, otp := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
		errs := ValidateVerifyOTP("alice@example.com", otp)
		assert.Contains(t, errs, "otp", "otp %q", otp)
	}
}

func TestValidateProfile(t *testing.T) {
	long := strings.Repeat("x", 501)
	name := strings.Repeat("x", 51)
	ok := "fine"

	assert.False(t, ValidateProfile(nil, nil, nil).HasErrors())
	assert.False(t, ValidateProfile(&ok, &ok, &ok).HasErrors())

	errs := ValidateProfile(&name, &name, &long)
	assert.Contains(t, errs, "first_name")
	assert.Contains(t, errs, "last_name")
	assert.Contains(t, errs, "bio")
}

func TestValidateChangePassword(t *testing.T) {
	assert.False(t, ValidateChangePassword("old-pass", "new-pass").HasErrors())

	assert.Contains(t, ValidateChangePassword("", "new-pass"), "current_password")
	assert.Contains(t, ValidateChangePassword("old-pass", ""), "new_password")
	assert.Contains(t, ValidateChangePassword("old-pass", "short"), "new_password")
}

func TestValidateTrack(t *testing.T) {
	assert.False(t, ValidateTrack("Night Drive", "Alice").HasErrors())

	assert.Contains(t, ValidateTrack("", "Alice"), "title")
	assert.Contains(t, ValidateTrack("   ", "Alice"), "title")
	assert.Contains(t, ValidateTrack(strings.Repeat("x", 101), "Alice"), "title")
	assert.Contains(t, ValidateTrack("Night Drive", ""), "artist")
}

func TestValidatePlaylist(t *testing.T) {
	assert.False(t, ValidatePlaylist("Road Trip").HasErrors())
	assert.Contains(t, ValidatePlaylist(""), "name")
	assert.Contains(t, ValidatePlaylist(strings.Repeat("x", 101)), "name")
}
