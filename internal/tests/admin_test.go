package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourbank/internal/domain"
	"hourbank/internal/service"
)

func seedPlatform(env *testEnv) {
	bob := env.addUser("bob", 12.5)
	bob.TotalTransactions = 1
	env.addUser("carol", 7.25)
	newcomer := env.addUser("erin", 10)
	newcomer.CreatedAt = testNow.AddDate(0, 0, -3)
	idle := env.addUser("idle", 0)
	idle.CreatedAt = testNow.AddDate(-1, 0, 0)

	env.addDirectService("svc-1", "carol", 1)
	env.txns.AddTransaction(&domain.Transaction{
		ID: "t1", ProviderID: "bob", ConsumerID: "erin",
		Status: domain.TransactionStatusCompleted, CreatedAt: testNow.AddDate(0, 0, -1),
	})
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	seedPlatform(env)

	stats, err := env.adminService.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalServices)
	assert.Equal(t, 1, stats.TotalTransactions)
	assert.Equal(t, 29.75, stats.TotalBankHours)
	assert.Equal(t, 2, stats.ActiveUsers, "bob has transactions and carol offers a service")
	assert.Equal(t, 1, stats.RecentSignups)
}

func TestAdminStats_ServedFromCache(t *testing.T) {
	env := newTestEnv(t)
	seedPlatform(env)
	ctx := context.Background()

	_, err := env.adminService.Stats(ctx)
	require.NoError(t, err)

	env.addUser("late", 1)
	stats, err := env.adminService.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalUsers)

	require.NoError(t, env.cache.InvalidateAdminStats(ctx))
	stats, err = env.adminService.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalUsers)
}

func TestAdminStats_RepositoryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.txns.ListError = ErrMockTimeout

	_, err := env.adminService.Stats(context.Background())
	assert.ErrorIs(t, err, ErrMockTimeout)
	assert.NotEmpty(t, env.errLog.Recent(0))
}

func TestHealthScore(t *testing.T) {
	testCases := []struct {
		name   string
		stats  domain.AdminStats
		score  int
		status domain.HealthStatus
	}{
		{"thriving", domain.AdminStats{TotalUsers: 10, ActiveUsers: 5, RecentSignups: 2, TotalTransactions: 3, TotalServices: 4}, 100, domain.HealthHealthy},
		{"no signups", domain.AdminStats{TotalUsers: 10, ActiveUsers: 5, TotalTransactions: 3, TotalServices: 4}, 80, domain.HealthWarning},
		{"low activity", domain.AdminStats{TotalUsers: 10, ActiveUsers: 2, RecentSignups: 1, TotalTransactions: 3, TotalServices: 4}, 70, domain.HealthWarning},
		{"no exchanges", domain.AdminStats{TotalUsers: 10, ActiveUsers: 5, RecentSignups: 1, TotalServices: 4}, 75, domain.HealthWarning},
		{"empty platform", domain.AdminStats{}, 30, domain.HealthCritical},
		{"floored", domain.AdminStats{TotalUsers: 10}, 0, domain.HealthCritical},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score := service.HealthScore(&tc.stats)
			assert.Equal(t, tc.score, score)
			assert.Equal(t, tc.status, service.HealthStatusFor(score))
		})
	}
}

func TestSystemHealth(t *testing.T) {
	env := newTestEnv(t)
	seedPlatform(env)

	health, err := env.adminService.SystemHealth(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, health.Score)
	assert.Equal(t, domain.HealthHealthy, health.Status)
	assert.Equal(t, testNow, health.LastChecked)
	assert.Equal(t, 4, health.TotalUsers)
}

func TestUsersWithStats(t *testing.T) {
	env := newTestEnv(t)
	seedPlatform(env)
	env.users.GetUser("idle").Status = domain.UserStatusSuspended
	env.txns.AddTransaction(&domain.Transaction{
		ID: "old", ProviderID: "bob", ConsumerID: "carol", CreatedAt: testNow.AddDate(0, -3, 0),
	})

	list, err := env.adminService.UsersWithStats(context.Background())
	require.NoError(t, err)

	byID := make(map[string]*domain.UserWithStats)
	for _, u := range list {
		byID[u.User.ID] = u
	}
	require.Len(t, byID, 4)

	assert.Equal(t, domain.ActivityActive, byID["bob"].Status)
	assert.Equal(t, 2, byID["bob"].TransactionsCount)
	assert.Equal(t, testNow.AddDate(0, 0, -1), byID["bob"].LastActivity)

	assert.Equal(t, domain.ActivityActive, byID["carol"].Status, "offers a service")
	assert.Equal(t, 1, byID["carol"].ServicesCount)

	assert.Equal(t, domain.ActivityActive, byID["erin"].Status)
	assert.Equal(t, domain.ActivitySuspended, byID["idle"].Status)
	assert.True(t, byID["idle"].LastActivity.IsZero())
}

func TestUserDetails(t *testing.T) {
	env := newTestEnv(t)
	seedPlatform(env)

	details, err := env.adminService.UserDetails(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol", details.User.ID)
	assert.Len(t, details.Services, 1)
	assert.Empty(t, details.Transactions)

	_, err = env.adminService.UserDetails(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrInvalidUserID)
}

func TestAdminUpdateBankHours_InvalidatesStats(t *testing.T) {
	env := newTestEnv(t)
	seedPlatform(env)
	ctx := context.Background()

	_, err := env.adminService.Stats(ctx)
	require.NoError(t, err)

	user, err := env.adminService.UpdateBankHours(ctx, "admin", "carol", 20, "event volunteer")
	require.NoError(t, err)
	assert.Equal(t, 20.0, user.BankHours)
	assert.Equal(t, int32(1), env.cache.InvalidateStatsCount)

	stats, err := env.adminService.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42.5, stats.TotalBankHours)
}

func TestAdminUpdateUserStatus(t *testing.T) {
	env := newTestEnv(t)
	seedPlatform(env)
	ctx := context.Background()

	user, err := env.adminService.UpdateUserStatus(ctx, "admin", "bob", domain.UserStatusSuspended, "spam")
	require.NoError(t, err)
	assert.True(t, user.IsSuspended())
	assert.True(t, env.users.GetUser("bob").IsSuspended())

	_, err = env.adminService.UpdateUserStatus(ctx, "admin", "bob", domain.UserStatus("BANNED"), "")
	assert.ErrorIs(t, err, service.ErrInvalidStatus)

	_, err = env.adminService.UpdateUserStatus(ctx, "admin", "admin", domain.UserStatusSuspended, "")
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = env.adminService.UpdateUserStatus(ctx, "admin", "ghost", domain.UserStatusActive, "")
	assert.Error(t, err)
}

func TestRecentErrors(t *testing.T) {
	env := newTestEnv(t)
	_, _ = env.userService.Login(context.Background(), "nobody", "password123")
	_, _ = env.userService.Login(context.Background(), "nobody2", "password123")

	entries := env.adminService.RecentErrors(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "login", entries[0].Operation)
}
