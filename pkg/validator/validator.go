package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
var otpRegex = regexp.MustCompile(`^[0-9]{6}$`)

func ValidateRegister(username, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	// Username
	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 30 {
		errs.Add("username", "Username cannot exceed 30 characters")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers and underscores")
	}

	// Password
	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) < 6 {
		errs.Add("password", "Password must be at least 6 characters")
	}

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateVerifyOTP(email, otp string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if otp == "" {
		errs.Add("otp", "Verification code is required")
	} else if !otpRegex.MatchString(otp) {
		errs.Add("otp", "Verification code must be 6 digits")
	}

	return errs
}

func ValidateEmail(email string) ValidationErrors {
	errs := make(ValidationErrors)
	validateEmail(email, errs)
	return errs
}

func ValidateProfile(firstName, lastName, bio *string) ValidationErrors {
	errs := make(ValidationErrors)

	if firstName != nil && len(*firstName) > 50 {
		errs.Add("first_name", "Name cannot exceed 50 characters")
	}
	if lastName != nil && len(*lastName) > 50 {
		errs.Add("last_name", "Last name cannot exceed 50 characters")
	}
	if bio != nil && len(*bio) > 500 {
		errs.Add("bio", "Bio cannot exceed 500 characters")
	}

	return errs
}

func ValidateChangePassword(current, newPassword string) ValidationErrors {
	errs := make(ValidationErrors)

	if current == "" {
		errs.Add("current_password", "Current password is required")
	}
	if newPassword == "" {
		errs.Add("new_password", "New password is required")
	} else if len(newPassword) < 6 {
		errs.Add("new_password", "Password must be at least 6 characters")
	}

	return errs
}

func ValidateTrack(title, artist string) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > 100 {
		errs.Add("title", "Title cannot exceed 100 characters")
	}

	artist = strings.TrimSpace(artist)
	if artist == "" {
		errs.Add("artist", "Artist is required")
	} else if len(artist) > 100 {
		errs.Add("artist", "Artist cannot exceed 100 characters")
	}

	return errs
}

func ValidatePlaylist(name string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Playlist name is required")
	} else if len(name) > 100 {
		errs.Add("name", "Playlist name cannot exceed 100 characters")
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}
