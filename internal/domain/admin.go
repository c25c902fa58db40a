package domain

import "time"

// AdminStats holds platform-wide aggregates for the admin dashboard.
type AdminStats struct {
	TotalUsers        int     `json:"total_users"`
	TotalServices     int     `json:"total_services"`
	TotalTransactions int     `json:"total_transactions"`
	TotalBankHours    float64 `json:"total_bank_hours"`
	ActiveUsers       int     `json:"active_users"`
	RecentSignups     int     `json:"recent_signups"`
}

// ActivityStatus classifies a user for the admin user list.
type ActivityStatus string

const (
	ActivityActive    ActivityStatus = "active"
	ActivityInactive  ActivityStatus = "inactive"
	ActivitySuspended ActivityStatus = "suspended"
)

// UserWithStats is a user annotated with activity counters.
type UserWithStats struct {
	User              *User
	ServicesCount     int
	TransactionsCount int
	LastActivity      time.Time
	Status            ActivityStatus
}

// HealthStatus buckets the system health score.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

// SystemHealth is AdminStats plus a derived health score.
type SystemHealth struct {
	AdminStats
	Score       int
	Status      HealthStatus
	LastChecked time.Time
}

// UserDetails bundles everything an admin sees for one user.
type UserDetails struct {
	User         *User
	Services     []*Service
	Transactions []*Transaction
}
