package auth

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidUsername = errors.New("username must be 3-30 letters, digits or underscores")
	ErrInvalidPassword = errors.New("password must be 8-72 characters")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// ValidateEmail checks that s is a bare e-mail address.
func ValidateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@")+1:], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateUsername checks the username shape.
func ValidateUsername(s string) error {
	if !usernamePattern.MatchString(s) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword checks the password length. bcrypt ignores bytes past 72.
func ValidatePassword(s string) error {
	if len(s) < 8 || len(s) > 72 {
		return ErrInvalidPassword
	}
	return nil
}
