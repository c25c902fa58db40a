package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourbank/internal/domain"
	"hourbank/internal/service"
)

func TestCreateService_AppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("bob", 10)

	svc, err := env.listingService.CreateService(context.Background(), "bob", service.ServiceInput{
		Title:          " Bike repair ",
		Description:    "Tune-ups and flats",
		Category:       "Repair",
		HourlyDuration: 2.7,
		Tags:           []string{"bike", "Bike", " "},
	})
	require.NoError(t, err)

	assert.True(t, svc.IsActive)
	assert.Equal(t, "Bike repair", svc.Title)
	assert.Equal(t, 2, svc.HourlyDuration)
	assert.Equal(t, []string{"bike"}, svc.Tags)
	assert.Equal(t, domain.DefaultMinBookingHours, svc.MinBookingHours)
	assert.Equal(t, domain.DefaultMaxBookingHours, svc.MaxBookingHours)
	assert.Equal(t, domain.DefaultAdvanceBookingDays, svc.AdvanceBookingDays)
	assert.Equal(t, 1, env.services.CountServices())
}

func TestCreateService_Validation(t *testing.T) {
	testCases := []struct {
		name string
		in   service.ServiceInput
		want error
	}{
		{"missing title", service.ServiceInput{Description: "d", Category: "c"}, service.ErrInvalidService},
		{"missing category", service.ServiceInput{Title: "t", Description: "d"}, service.ErrInvalidService},
		{"min above max", service.ServiceInput{Title: "t", Description: "d", Category: "c", MinBookingHours: 5, MaxBookingHours: 2}, service.ErrInvalidBookingBounds},
		{"max above a day", service.ServiceInput{Title: "t", Description: "d", Category: "c", MaxBookingHours: 30}, service.ErrInvalidBookingBounds},
		{"negative horizon", service.ServiceInput{Title: "t", Description: "d", Category: "c", AdvanceBookingDays: -1}, service.ErrInvalidBookingBounds},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addUser("bob", 10)

			_, err := env.listingService.CreateService(context.Background(), "bob", tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, int32(0), env.services.CreateCallCount)
		})
	}
}

func TestCreateService_SuspendedOwner(t *testing.T) {
	env := newTestEnv(t)
	u := env.addUser("bob", 10)
	u.Status = domain.UserStatusSuspended

	_, err := env.listingService.CreateService(context.Background(), "bob", service.ServiceInput{
		Title: "t", Description: "d", Category: "c",
	})
	assert.ErrorIs(t, err, service.ErrUserSuspended)
}

func TestUpdateAndDeleteService_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("bob", 10)
	env.addUser("mallory", 10)
	env.addDirectService("svc-1", "bob", 1)
	ctx := context.Background()
	in := service.ServiceInput{Title: "New", Description: "d", Category: "c"}

	_, err := env.listingService.UpdateService(ctx, "mallory", "svc-1", in)
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.ErrorIs(t, env.listingService.DeleteService(ctx, "mallory", "svc-1"), service.ErrForbidden)

	updated, err := env.listingService.UpdateService(ctx, "bob", "svc-1", in)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	require.NoError(t, env.listingService.DeleteService(ctx, "bob", "svc-1"))
	assert.Equal(t, 0, env.services.CountServices())
}

func TestListServices_FiltersAndClampsLimit(t *testing.T) {
	env := newTestEnv(t)
	env.addDirectService("svc-1", "bob", 1)
	hidden := env.addDirectService("svc-2", "bob", 1)
	hidden.IsActive = false
	ctx := context.Background()

	services, err := env.listingService.ListServices(ctx, domain.ServiceFilter{Limit: 10000, Query: " WEED "}, false)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "svc-1", services[0].ID)
	assert.Equal(t, 200, env.services.LastFilter.Limit)
	assert.Equal(t, "WEED", env.services.LastFilter.Query)
	assert.True(t, env.services.LastFilter.ActiveOnly)

	services, err = env.listingService.ListServices(ctx, domain.ServiceFilter{}, true)
	require.NoError(t, err)
	assert.Len(t, services, 2)
	assert.Equal(t, 50, env.services.LastFilter.Limit)
}

func TestListByUser_InactiveVisibleToOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	env.addDirectService("svc-1", "bob", 1)
	hidden := env.addDirectService("svc-2", "bob", 1)
	hidden.IsActive = false
	ctx := context.Background()

	own, err := env.listingService.ListByUser(ctx, "bob", "bob")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	public, err := env.listingService.ListByUser(ctx, "carol", "bob")
	require.NoError(t, err)
	assert.Len(t, public, 1)
}
