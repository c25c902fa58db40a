package domain

import (
	"strings"
	"time"
)

// UserRole represents the access level of a user.
type UserRole string

const (
	UserRoleMember UserRole = "USER"
	UserRoleAdmin  UserRole = "ADMIN"
)

// UserStatus represents whether a user may act on the platform.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User represents a member of the time bank.
type User struct {
	ID                string
	Email             string
	Username          string
	PasswordHash      string
	FirstName         string
	LastName          string
	BankHours         float64
	Skills            []string
	Bio               string
	ProfilePicture    string
	Rating            float64
	TotalTransactions int
	Role              UserRole
	Status            UserStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsAdmin reports whether the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsSuspended reports whether the user has been suspended by an admin.
func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// DisplayName returns the best human-readable name available:
// full name, then username, then the local part of the e-mail.
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return "Unknown User"
}
