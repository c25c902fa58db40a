package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
	"hourbank/internal/service"
)

// thursday is the day after testNow.
const thursday = "2025-06-12"

func startTimes(slots []domain.TimeSlot, available bool) []string {
	var out []string
	for _, s := range slots {
		if s.IsAvailable == available {
			out = append(out, s.StartTime)
		}
	}
	return out
}

func TestCreateSchedule_RejectsOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	ctx := context.Background()

	_, err := env.scheduleService.CreateSchedule(ctx, "bob", "svc-1", service.ScheduleInput{
		DayOfWeek: int(time.Thursday), StartTime: "16:00", EndTime: "18:00",
	})
	assert.ErrorIs(t, err, service.ErrScheduleOverlap)

	// Touching windows do not overlap.
	schedule, err := env.scheduleService.CreateSchedule(ctx, "bob", "svc-1", service.ScheduleInput{
		DayOfWeek: int(time.Thursday), StartTime: "17:00", EndTime: "19:00",
	})
	require.NoError(t, err)
	assert.True(t, schedule.IsActive)
	assert.Equal(t, 2, env.schedules.CountSchedules())
}

func TestCreateSchedule_Validation(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	ctx := context.Background()

	testCases := []struct {
		name string
		in   service.ScheduleInput
	}{
		{"bad day", service.ScheduleInput{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}},
		{"end before start", service.ScheduleInput{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"}},
		{"bad time", service.ScheduleInput{DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.scheduleService.CreateSchedule(ctx, "bob", "svc-1", tc.in)
			assert.ErrorIs(t, err, service.ErrInvalidSchedule)
		})
	}

	_, err := env.scheduleService.CreateSchedule(ctx, "mallory", "svc-1", service.ScheduleInput{
		DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00",
	})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestUpdateSchedule_IgnoresItself(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")

	schedule, err := env.scheduleService.UpdateSchedule(context.Background(), "bob", "svc-1-thu", service.ScheduleInput{
		DayOfWeek: int(time.Thursday), StartTime: "10:00", EndTime: "12:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00", schedule.StartTime)
}

func TestAvailableTimeSlots_HalfHourSteps(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")

	slots, err := env.scheduleService.GetAvailableTimeSlots(context.Background(), "svc-1", thursday, 2)
	require.NoError(t, err)

	// 09:00 through 15:00 inclusive.
	require.Len(t, slots, 13)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "11:00", slots[0].EndTime)
	assert.Equal(t, "15:00", slots[12].StartTime)
	assert.Equal(t, "17:00", slots[12].EndTime)
	assert.Empty(t, startTimes(slots, false))
}

func TestAvailableTimeSlots_DefaultDurationIsOneHour(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")

	slots, err := env.scheduleService.GetAvailableTimeSlots(context.Background(), "svc-1", thursday, 0)
	require.NoError(t, err)
	require.Len(t, slots, 15)
	assert.Equal(t, "10:00", slots[0].EndTime)
}

func TestAvailableTimeSlots_MarksBookedSlots(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	env.bookings.AddBooking(&domain.Booking{
		ID: "b1", ServiceID: "svc-1", BookingDate: thursday,
		StartTime: "10:00", EndTime: "11:00", Status: domain.BookingStatusConfirmed,
	})
	env.bookings.AddBooking(&domain.Booking{
		ID: "b2", ServiceID: "svc-1", BookingDate: thursday,
		StartTime: "13:00", EndTime: "14:00", Status: domain.BookingStatusCancelledByConsumer,
	})

	slots, err := env.scheduleService.GetAvailableTimeSlots(context.Background(), "svc-1", thursday, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"09:30", "10:00", "10:30"}, startTimes(slots, false))
	for _, s := range slots {
		if !s.IsAvailable {
			assert.Equal(t, "Time slot already booked", s.ConflictReason)
		}
	}
}

func TestAvailableTimeSlots_Exceptions(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	ctx := context.Background()

	_, err := env.scheduleService.CreateException(ctx, "bob", "svc-1", service.ExceptionInput{
		Date: thursday, Type: domain.ScheduleExceptionCustomHours, StartTime: "18:00", EndTime: "20:00",
	})
	require.NoError(t, err)

	slots, err := env.scheduleService.GetAvailableTimeSlots(ctx, "svc-1", thursday, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"18:00", "18:30", "19:00"}, startTimes(slots, true))

	_, err = env.scheduleService.CreateException(ctx, "bob", "svc-1", service.ExceptionInput{
		Date: thursday, Type: domain.ScheduleExceptionHoliday, Reason: "Family visit",
	})
	require.NoError(t, err)

	slots, err = env.scheduleService.GetAvailableTimeSlots(ctx, "svc-1", thursday, 1)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestDeleteException_ReopensDate(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	ctx := context.Background()

	holiday, err := env.scheduleService.CreateException(ctx, "bob", "svc-1", service.ExceptionInput{
		Date: thursday, Type: domain.ScheduleExceptionHoliday,
	})
	require.NoError(t, err)

	err = env.scheduleService.DeleteException(ctx, "alice", holiday.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	require.NoError(t, env.scheduleService.DeleteException(ctx, "bob", holiday.ID))

	slots, err := env.scheduleService.GetAvailableTimeSlots(ctx, "svc-1", thursday, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, startTimes(slots, true))

	err = env.scheduleService.DeleteException(ctx, "bob", holiday.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateException_CustomHoursNeedRange(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")

	_, err := env.scheduleService.CreateException(context.Background(), "bob", "svc-1", service.ExceptionInput{
		Date: thursday, Type: domain.ScheduleExceptionCustomHours,
	})
	assert.ErrorIs(t, err, service.ErrInvalidSchedule)

	_, err = env.scheduleService.CreateException(context.Background(), "bob", "svc-1", service.ExceptionInput{
		Date: "12/06/2025", Type: domain.ScheduleExceptionHoliday,
	})
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}

func TestAvailableTimeSlots_PastSlotsToday(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	env.schedules.AddSchedule(&domain.ServiceSchedule{
		ID: "wed", ServiceID: "svc-1", UserID: "bob",
		DayOfWeek: int(time.Wednesday), StartTime: "08:00", EndTime: "11:00", IsActive: true,
	})

	slots, err := env.scheduleService.GetAvailableTimeSlots(context.Background(), "svc-1", "2025-06-11", 1)
	require.NoError(t, err)

	// testNow is 09:00, so slots starting at or before it have begun.
	assert.Equal(t, []string{"08:00", "08:30", "09:00"}, startTimes(slots, false))
	assert.Equal(t, []string{"09:30", "10:00"}, startTimes(slots, true))
	assert.Equal(t, "Time slot has already started", slots[0].ConflictReason)
}

func TestAvailableTimeSlots_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	ctx := context.Background()

	_, err := env.scheduleService.GetAvailableTimeSlots(ctx, "svc-1", "tomorrow", 1)
	assert.ErrorIs(t, err, service.ErrInvalidDate)

	_, err = env.scheduleService.GetAvailableTimeSlots(ctx, "svc-1", thursday, 1.25)
	assert.ErrorIs(t, err, service.ErrInvalidDuration)

	slots, err := env.scheduleService.GetAvailableTimeSlots(ctx, "svc-1", "2025-06-13", 1)
	require.NoError(t, err)
	assert.Empty(t, slots, "no schedule on Fridays")
}
