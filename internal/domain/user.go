package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	IsVerified   bool        `json:"is_verified"`
	Role         Role        `json:"role"`
	OTPCode      *string     `json:"-"`
	OTPExpiresAt *time.Time  `json:"-"`
	Profile      Profile     `json:"profile"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type Profile struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

type Preferences struct {
	FavoriteGenres []string `json:"favorite_genres"`
}

// FullName falls back to the username when either name part is missing.
func (u *User) FullName() string {
	if u.Profile.FirstName != nil && u.Profile.LastName != nil {
		return *u.Profile.FirstName + " " + *u.Profile.LastName
	}
	return u.Username
}

// HasOTP reports whether a passcode is currently stored. Code and expiry
// are always set and cleared together.
func (u *User) HasOTP() bool {
	return u.OTPCode != nil && u.OTPExpiresAt != nil
}

type UserStats struct {
	TrackCount int `json:"track_count"`
	LikedCount int `json:"liked_count"`
}
