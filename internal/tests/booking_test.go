package tests

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourbank/internal/domain"
	"hourbank/internal/service"
)

func bookingRequest() service.CreateBookingRequest {
	return service.CreateBookingRequest{
		ServiceID: "svc-1",
		Date:      thursday,
		StartTime: "10:00",
		Duration:  1.5,
		Notes:     "First lesson",
	}
}

func TestCreateBooking_Success(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("bob", 10)
	env.addUser("carol", 10)
	env.addScheduledService("svc-1", "bob")

	booking, err := env.bookingService.CreateBooking(context.Background(), "carol", bookingRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, "bob", booking.ProviderID)
	assert.Equal(t, "10:00", booking.StartTime)
	assert.Equal(t, "11:30", booking.EndTime)
	assert.Equal(t, 1.5, booking.TotalCost)
	assert.Equal(t, 0, env.locks.LockCount(), "slot lock released")

	notes := env.notifications.ForUser("bob")
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationBookingRequested, notes[0].Type)
	assert.Equal(t, booking.ID, notes[0].RelatedID)

	// No balance moves until completion.
	assert.Equal(t, 10.0, env.users.GetUser("carol").BankHours)
}

func TestCreateBooking_CostUsesHourlyRate(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("bob", 10)
	env.addUser("carol", 10)
	svc := env.addScheduledService("svc-1", "bob")
	svc.HourlyDuration = 3

	booking, err := env.bookingService.CreateBooking(context.Background(), "carol", bookingRequest())
	require.NoError(t, err)
	assert.Equal(t, 4.5, booking.TotalCost)
}

func TestCreateBooking_Rejections(t *testing.T) {
	testCases := []struct {
		name   string
		setup  func(env *testEnv)
		modify func(r *service.CreateBookingRequest)
		want   error
	}{
		{
			name:   "own service",
			modify: func(r *service.CreateBookingRequest) {},
			want:   service.ErrOwnService,
		},
		{
			name:   "duration below minimum",
			modify: func(r *service.CreateBookingRequest) { r.Duration = 0 },
			want:   service.ErrInvalidDuration,
		},
		{
			name:   "duration above maximum",
			modify: func(r *service.CreateBookingRequest) { r.Duration = 5 },
			want:   service.ErrInvalidDuration,
		},
		{
			name:   "duration not half hours",
			modify: func(r *service.CreateBookingRequest) { r.Duration = 1.2 },
			want:   service.ErrInvalidDuration,
		},
		{
			name:   "date in the past",
			modify: func(r *service.CreateBookingRequest) { r.Date = "2025-06-05" },
			want:   service.ErrInvalidDate,
		},
		{
			name:   "date beyond horizon",
			modify: func(r *service.CreateBookingRequest) { r.Date = "2025-08-14" },
			want:   service.ErrDateOutOfRange,
		},
		{
			name:   "outside schedule",
			modify: func(r *service.CreateBookingRequest) { r.StartTime = "16:30" },
			want:   service.ErrSlotUnavailable,
		},
		{
			name:   "off the half-hour grid",
			modify: func(r *service.CreateBookingRequest) { r.StartTime = "10:15" },
			want:   service.ErrSlotUnavailable,
		},
		{
			name:   "insufficient balance",
			modify: func(r *service.CreateBookingRequest) {},
			setup:  func(env *testEnv) { env.users.GetUser("carol").BankHours = 1 },
			want:   service.ErrInsufficientBalance,
		},
		{
			name:   "inactive service",
			modify: func(r *service.CreateBookingRequest) {},
			setup: func(env *testEnv) {
				svc, _ := env.services.GetByID(context.Background(), "svc-1")
				svc.IsActive = false
				env.services.AddService(svc)
			},
			want: service.ErrServiceInactive,
		},
		{
			name:   "slot lock held",
			modify: func(r *service.CreateBookingRequest) {},
			setup:  func(env *testEnv) { env.locks.ForceAcquireFailure = true },
			want:   service.ErrResourceBusy,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addUser("bob", 10)
			env.addUser("carol", 10)
			env.addScheduledService("svc-1", "bob")
			if tc.setup != nil {
				tc.setup(env)
			}
			req := bookingRequest()
			tc.modify(&req)

			consumer := "carol"
			if tc.want == service.ErrOwnService {
				consumer = "bob"
			}
			_, err := env.bookingService.CreateBooking(context.Background(), consumer, req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, int32(0), env.bookings.CreateCallCount)
		})
	}
}

func TestCreateBooking_DirectServiceRejected(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("bob", 10)
	env.addUser("carol", 10)
	env.addDirectService("svc-1", "bob", 1)

	_, err := env.bookingService.CreateBooking(context.Background(), "carol", bookingRequest())
	assert.ErrorIs(t, err, service.ErrSchedulingNotRequired)
}

func TestCreateBooking_SlotTakenOnce(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("bob", 10)
	env.addUser("carol", 10)
	env.addUser("dave", 10)
	env.addScheduledService("svc-1", "bob")
	ctx := context.Background()

	_, err := env.bookingService.CreateBooking(ctx, "carol", bookingRequest())
	require.NoError(t, err)

	req := bookingRequest()
	req.StartTime = "11:00"
	_, err = env.bookingService.CreateBooking(ctx, "dave", req)
	assert.ErrorIs(t, err, service.ErrSlotUnavailable)
}

func addPendingBooking(env *testEnv, status domain.BookingStatus) *domain.Booking {
	b := &domain.Booking{
		ID: "bk-1", ServiceID: "svc-1", ProviderID: "bob", ConsumerID: "carol",
		BookingDate: thursday, StartTime: "10:00", EndTime: "11:00",
		Duration: 1, TotalCost: 1, Status: status,
	}
	env.bookings.AddBooking(b)
	return b
}

func TestBookingStatus_ProviderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	addPendingBooking(env, domain.BookingStatusPending)
	ctx := context.Background()

	b, err := env.bookingService.UpdateStatus(ctx, "bob", "bk-1", service.StatusUpdate{
		Status: domain.BookingStatusConfirmed, ProviderNotes: "Bring your guitar",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Equal(t, testNow, b.ConfirmedAt)
	assert.Equal(t, "Bring your guitar", env.bookings.GetBooking("bk-1").ProviderNotes)

	b, err = env.bookingService.UpdateStatus(ctx, "bob", "bk-1", service.StatusUpdate{Status: domain.BookingStatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusInProgress, b.Status)

	notes := env.notifications.ForUser("carol")
	require.Len(t, notes, 2)
	assert.Equal(t, domain.NotificationBookingConfirmed, notes[0].Type)
}

func TestBookingStatus_RoleRules(t *testing.T) {
	testCases := []struct {
		name   string
		from   domain.BookingStatus
		actor  string
		status domain.BookingStatus
		want   error
	}{
		{"consumer cannot confirm", domain.BookingStatusPending, "carol", domain.BookingStatusConfirmed, service.ErrForbidden},
		{"provider cannot cancel as consumer", domain.BookingStatusPending, "bob", domain.BookingStatusCancelledByConsumer, service.ErrForbidden},
		{"stranger", domain.BookingStatusPending, "mallory", domain.BookingStatusCancelledByConsumer, service.ErrForbidden},
		{"skip confirmation", domain.BookingStatusPending, "bob", domain.BookingStatusInProgress, service.ErrInvalidStatusTransition},
		{"no-show before confirmation", domain.BookingStatusPending, "bob", domain.BookingStatusNoShowConsumer, service.ErrInvalidStatusTransition},
		{"reopen completed", domain.BookingStatusCompleted, "bob", domain.BookingStatusConfirmed, service.ErrInvalidStatusTransition},
		{"unknown status", domain.BookingStatusPending, "bob", domain.BookingStatus("DONE"), service.ErrInvalidStatus},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.addScheduledService("svc-1", "bob")
			addPendingBooking(env, tc.from)

			_, err := env.bookingService.UpdateStatus(context.Background(), tc.actor, "bk-1", service.StatusUpdate{Status: tc.status})
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, int32(0), env.bookings.UpdateCallCount)
		})
	}
}

func TestBookingStatus_StaleReadCannotOverwriteCompletion(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	addPendingBooking(env, domain.BookingStatusConfirmed)

	// The provider completes the booking between the consumer's read and write.
	env.bookings.AfterGet = func(id string) {
		env.bookings.AfterGet = nil
		env.bookings.AddBooking(&domain.Booking{
			ID: id, ServiceID: "svc-1", ProviderID: "bob", ConsumerID: "carol",
			BookingDate: thursday, StartTime: "10:00", EndTime: "11:00",
			Duration: 1, TotalCost: 1, Status: domain.BookingStatusCompleted,
			TransactionID: "txn-paid", CompletedAt: testNow,
		})
	}

	_, err := env.bookingService.UpdateStatus(context.Background(), "carol", "bk-1", service.StatusUpdate{
		Status: domain.BookingStatusCancelledByConsumer, Reason: "Changed my mind",
	})
	assert.ErrorIs(t, err, service.ErrInvalidStatusTransition)

	stored := env.bookings.GetBooking("bk-1")
	assert.Equal(t, domain.BookingStatusCompleted, stored.Status)
	assert.Equal(t, "txn-paid", stored.TransactionID)
	assert.Empty(t, env.notifications.ForUser("bob"))
}

func TestBookingStatus_ConsumerCancellationWindow(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	addPendingBooking(env, domain.BookingStatusConfirmed)
	ctx := context.Background()

	// Thursday 10:00 is 25 hours after testNow, outside the 24 hour window.
	b, err := env.bookingService.UpdateStatus(ctx, "carol", "bk-1", service.StatusUpdate{
		Status: domain.BookingStatusCancelledByConsumer, Reason: "Sick",
	})
	require.NoError(t, err)
	assert.True(t, b.IsCancelled())
	assert.Equal(t, "Sick", b.CancellationReason)
	assert.Equal(t, testNow, b.CancelledAt)

	notes := env.notifications.ForUser("bob")
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationBookingCancelled, notes[0].Type)
	assert.Contains(t, notes[0].Message, "Sick")
}

func TestBookingStatus_LateCancellationRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.addScheduledService("svc-1", "bob")
	svc.CancellationHours = 48
	addPendingBooking(env, domain.BookingStatusConfirmed)
	ctx := context.Background()

	_, err := env.bookingService.UpdateStatus(ctx, "carol", "bk-1", service.StatusUpdate{Status: domain.BookingStatusCancelledByConsumer})
	assert.ErrorIs(t, err, service.ErrCancellationWindow)

	// The provider is not bound by the window.
	b, err := env.bookingService.UpdateStatus(ctx, "bob", "bk-1", service.StatusUpdate{Status: domain.BookingStatusCancelledByProvider})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelledByProvider, b.Status)
}

func TestBookingStatus_PendingCancellationIgnoresWindow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.addScheduledService("svc-1", "bob")
	svc.CancellationHours = 48
	addPendingBooking(env, domain.BookingStatusPending)

	_, err := env.bookingService.UpdateStatus(context.Background(), "carol", "bk-1", service.StatusUpdate{Status: domain.BookingStatusCancelledByConsumer})
	assert.NoError(t, err)
}

func TestBookingStatus_CompletePaysProvider(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	booking := addPendingBooking(env, domain.BookingStatusInProgress)
	mock := env.sqlDB

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \$1`).
		WithArgs("bk-1").
		WillReturnRows(bookingRow(booking))
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(testNow, testNow))
	mock.ExpectExec(`UPDATE bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectBalanceMoves(mock, "carol", "bob", 1, 9, 11)
	mock.ExpectQuery(`SELECT .+ FROM transactions WHERE id = \$1`).
		WillReturnRows(transactionRow(&domain.Transaction{
			ID: "placeholder", ProviderID: "bob", ConsumerID: "carol", ServiceID: "svc-1",
			BookingID: "bk-1", HoursSpent: 1, Status: domain.TransactionStatusInProgress,
		}))
	mock.ExpectExec(`UPDATE transactions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := env.bookingService.UpdateStatus(context.Background(), "bob", "bk-1", service.StatusUpdate{Status: domain.BookingStatusCompleted})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, domain.BookingStatusCompleted, b.Status)
	assert.NotEmpty(t, b.TransactionID)
	assert.Equal(t, testNow, b.CompletedAt)
	assert.Equal(t, 0, env.locks.LockCount(), "user locks released")
	assert.ElementsMatch(t, []string{"carol", "bob"}, env.cache.InvalidateBalanceKeys)

	var types []domain.NotificationType
	for _, n := range env.notifications.ForUser("bob") {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, domain.NotificationHoursReceived)
	assert.Len(t, env.notifications.ForUser("carol"), 1)
}

func TestBookingStatus_CompleteRollsBackOnInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	booking := addPendingBooking(env, domain.BookingStatusInProgress)
	mock := env.sqlDB

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \$1`).
		WillReturnRows(bookingRow(booking))
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(testNow, testNow))
	mock.ExpectExec(`UPDATE bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE users SET bank_hours = bank_hours \+ \$1`).
		WithArgs(-1.0, "carol").
		WillReturnRows(sqlmock.NewRows([]string{"bank_hours"}))
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("carol").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"carol", "carol@hourbank.test", "carol", "hash", "Carol", "", 0.5, "{}",
			"", "", 5.0, 0, "USER", "ACTIVE", testNow, testNow,
		))
	mock.ExpectRollback()

	_, err := env.bookingService.UpdateStatus(context.Background(), "bob", "bk-1", service.StatusUpdate{Status: domain.BookingStatusCompleted})
	assert.ErrorIs(t, err, service.ErrInsufficientBalance)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, domain.BookingStatusInProgress, env.bookings.GetBooking("bk-1").Status)
	assert.Equal(t, 0, env.locks.LockCount())
}

func TestBookingStatus_CompleteBusyWhenUserLocked(t *testing.T) {
	env := newTestEnv(t)
	env.addScheduledService("svc-1", "bob")
	addPendingBooking(env, domain.BookingStatusInProgress)
	env.locks.HoldUserLock("carol")

	_, err := env.bookingService.UpdateStatus(context.Background(), "bob", "bk-1", service.StatusUpdate{Status: domain.BookingStatusCompleted})
	assert.ErrorIs(t, err, service.ErrResourceBusy)
	require.NoError(t, env.sqlDB.ExpectationsWereMet())
}

func TestListBookings_MergesRoles(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.AddBooking(&domain.Booking{ID: "b1", ProviderID: "bob", ConsumerID: "carol", BookingDate: "2025-06-13", StartTime: "09:00"})
	env.bookings.AddBooking(&domain.Booking{ID: "b2", ProviderID: "carol", ConsumerID: "bob", BookingDate: "2025-06-12", StartTime: "15:00"})
	env.bookings.AddBooking(&domain.Booking{ID: "b3", ProviderID: "dave", ConsumerID: "erin", BookingDate: "2025-06-12", StartTime: "08:00"})
	ctx := context.Background()

	all, err := env.bookingService.ListBookings(ctx, "bob", "", "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b2", all[0].ID)
	assert.Equal(t, "b1", all[1].ID)

	provided, err := env.bookingService.ListBookings(ctx, "bob", domain.BookingRoleProvider, "", "")
	require.NoError(t, err)
	require.Len(t, provided, 1)
	assert.Equal(t, "b1", provided[0].ID)

	ranged, err := env.bookingService.ListBookings(ctx, "bob", "", "2025-06-13", "2025-06-30")
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	_, err = env.bookingService.ListBookings(ctx, "bob", "", "June", "")
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}

func TestGetBooking_PartiesOnly(t *testing.T) {
	env := newTestEnv(t)
	addPendingBooking(env, domain.BookingStatusPending)

	_, err := env.bookingService.Get(context.Background(), "carol", "bk-1")
	assert.NoError(t, err)
	_, err = env.bookingService.Get(context.Background(), "mallory", "bk-1")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestCalendarEvents(t *testing.T) {
	env := newTestEnv(t)
	env.addUser("carol", 10)
	env.addScheduledService("svc-1", "bob")
	bookings := []*domain.Booking{
		{ID: "b1", ServiceID: "svc-1", ConsumerID: "carol", BookingDate: thursday, StartTime: "10:00", EndTime: "11:30", Status: domain.BookingStatusConfirmed},
		{ID: "b2", ServiceID: "gone", ConsumerID: "ghost", BookingDate: thursday, StartTime: "23:00", EndTime: "24:00", Status: domain.BookingStatusPending},
	}

	events := env.bookingService.CalendarEvents(context.Background(), bookings)
	require.Len(t, events, 2)

	assert.Equal(t, "Guitar lessons - carol", events[0].Title)
	assert.Equal(t, "#28a745", events[0].Color)
	assert.Equal(t, 10, events[0].Start.Hour())
	assert.Equal(t, 90.0, events[0].End.Sub(events[0].Start).Minutes())

	assert.Equal(t, "Service - Consumer", events[1].Title)
	assert.Equal(t, "#ffc107", events[1].Color)
	assert.Equal(t, 13, events[1].End.Day())
}
