package tests

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"hourbank/internal/config"
	"hourbank/internal/domain"
	"hourbank/internal/logging"
	"hourbank/internal/service"
)

// testNow is a Wednesday morning.
var testNow = time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

// testEnv wires every service against in-memory mocks.
type testEnv struct {
	users         *MockUserRepository
	services      *MockServiceRepository
	schedules     *MockScheduleRepository
	bookings      *MockBookingRepository
	txns          *MockTransactionRepository
	ratings       *MockRatingRepository
	notifications *MockNotificationRepository
	cache         *MockCacheStore
	locks         *MockLockStore

	db     *sql.DB
	sqlDB  sqlmock.Sqlmock
	errLog *logging.ErrorLogger
	logs   *logtest.Hook

	userService         *service.UserService
	listingService      *service.ListingService
	scheduleService     *service.ScheduleService
	bookingService      *service.BookingService
	transactionService  *service.TransactionService
	ratingService       *service.RatingService
	notificationService *service.NotificationService
	ledger              *service.LedgerService
	adminService        *service.AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log, _ := newTestLogger()
	errLog, hook := newTestErrorLogger()

	env := &testEnv{
		users:         NewMockUserRepository(),
		services:      NewMockServiceRepository(),
		schedules:     NewMockScheduleRepository(),
		bookings:      NewMockBookingRepository(),
		txns:          NewMockTransactionRepository(),
		ratings:       NewMockRatingRepository(),
		notifications: NewMockNotificationRepository(),
		cache:         NewMockCacheStore(),
		locks:         NewMockLockStore(),
		db:            db,
		sqlDB:         mock,
		errLog:        errLog,
		logs:          hook,
	}

	bank := config.BankConfig{
		DefaultBankHours: 10,
		DefaultRating:    5,
		AdminQueryLimit:  1000,
		RecentWindow:     30 * 24 * time.Hour,
	}
	clock := func() time.Time { return testNow }

	env.notificationService = service.NewNotificationService(env.notifications, log)
	env.ledger = service.NewLedgerService(db, env.users, env.locks, env.cache, errLog, log)
	env.userService = service.NewUserService(env.users, env.services, env.txns, env.cache,
		&MockTokenIssuer{}, errLog, log, bank, []string{"Admin@HourBank.test"})
	env.listingService = service.NewListingService(env.services, env.users, errLog, log)
	env.scheduleService = service.NewScheduleService(env.schedules, env.services, env.bookings, log)
	env.scheduleService.SetClock(clock)
	env.bookingService = service.NewBookingService(env.bookings, env.services, env.users, env.scheduleService,
		env.ledger, env.notificationService, env.locks, errLog, log)
	env.bookingService.SetClock(clock)
	env.transactionService = service.NewTransactionService(env.txns, env.services, env.users, env.ledger,
		env.notificationService, log)
	env.ratingService = service.NewRatingService(db, env.txns, env.ratings, env.notificationService, log)
	env.adminService = service.NewAdminService(env.users, env.services, env.txns, env.ledger, env.cache,
		errLog, log, bank.AdminQueryLimit, bank.RecentWindow)
	env.adminService.SetClock(clock)

	return env
}

func (e *testEnv) addUser(id string, hours float64) *domain.User {
	u := &domain.User{
		ID:        id,
		Email:     id + "@hourbank.test",
		Username:  id,
		FirstName: id,
		BankHours: hours,
		Rating:    5,
		Role:      domain.UserRoleMember,
		Status:    domain.UserStatusActive,
		CreatedAt: testNow.AddDate(0, -2, 0),
	}
	e.users.AddUser(u)
	return u
}

// addScheduledService adds an active scheduled service owned by providerID
// open 09:00-17:00 on Thursdays.
func (e *testEnv) addScheduledService(id, providerID string) *domain.Service {
	svc := &domain.Service{
		ID:                 id,
		UserID:             providerID,
		Title:              "Guitar lessons",
		Description:        "Beginner friendly",
		Category:           "Music",
		HourlyDuration:     1,
		IsActive:           true,
		RequiresScheduling: true,
		MinBookingHours:    0.5,
		MaxBookingHours:    4,
		AdvanceBookingDays: 30,
		CancellationHours:  24,
		CreatedAt:          testNow,
	}
	e.services.AddService(svc)
	e.schedules.AddSchedule(&domain.ServiceSchedule{
		ID:        id + "-thu",
		ServiceID: id,
		UserID:    providerID,
		DayOfWeek: int(time.Thursday),
		StartTime: "09:00",
		EndTime:   "17:00",
		IsActive:  true,
	})
	return svc
}

func (e *testEnv) addDirectService(id, providerID string, hourly int) *domain.Service {
	svc := &domain.Service{
		ID:             id,
		UserID:         providerID,
		Title:          "Garden help",
		Description:    "Weeding and planting",
		Category:       "Home",
		HourlyDuration: hourly,
		IsActive:       true,
		CreatedAt:      testNow,
	}
	e.services.AddService(svc)
	return svc
}

// Rows and statement patterns for the SQL the ledger issues.

var userRowColumns = []string{
	"id", "email", "username", "password_hash", "first_name", "last_name", "bank_hours", "skills",
	"bio", "profile_picture", "rating", "total_transactions", "role", "status", "created_at", "updated_at",
}

var transactionRowColumns = []string{
	"id", "provider_id", "consumer_id", "service_id", "booking_id", "hours_spent", "status",
	"description", "rating", "feedback", "created_at", "completed_at", "updated_at",
}

var bookingRowColumns = []string{
	"id", "service_id", "provider_id", "consumer_id", "booking_date", "start_time", "end_time",
	"duration", "total_cost", "status", "notes", "provider_notes", "cancellation_reason",
	"transaction_id", "created_at", "confirmed_at", "cancelled_at", "completed_at", "updated_at",
}

func transactionRow(t *domain.Transaction) *sqlmock.Rows {
	return sqlmock.NewRows(transactionRowColumns).AddRow(
		t.ID, t.ProviderID, t.ConsumerID, t.ServiceID, nullable(t.BookingID), t.HoursSpent, string(t.Status),
		t.Description, t.Rating, t.Feedback, testNow, nil, testNow,
	)
}

func bookingRow(b *domain.Booking) *sqlmock.Rows {
	return sqlmock.NewRows(bookingRowColumns).AddRow(
		b.ID, b.ServiceID, b.ProviderID, b.ConsumerID, b.BookingDate, b.StartTime, b.EndTime,
		b.Duration, b.TotalCost, string(b.Status), b.Notes, b.ProviderNotes, b.CancellationReason,
		nullable(b.TransactionID), testNow, nil, nil, nil, testNow,
	)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// expectBalanceMoves expects the debit, credit and counter updates of a transfer.
func expectBalanceMoves(mock sqlmock.Sqlmock, from, to string, hours, fromAfter, toAfter float64) {
	mock.ExpectQuery(`UPDATE users SET bank_hours = bank_hours \+ \$1`).
		WithArgs(-hours, from).
		WillReturnRows(sqlmock.NewRows([]string{"bank_hours"}).AddRow(fromAfter))
	mock.ExpectQuery(`UPDATE users SET bank_hours = bank_hours \+ \$1`).
		WithArgs(hours, to).
		WillReturnRows(sqlmock.NewRows([]string{"bank_hours"}).AddRow(toAfter))
	mock.ExpectExec(`UPDATE users SET total_transactions = total_transactions \+ 1`).
		WithArgs(from).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET total_transactions = total_transactions \+ 1`).
		WithArgs(to).
		WillReturnResult(sqlmock.NewResult(0, 1))
}
