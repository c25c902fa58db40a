package tests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"hourbank/internal/domain"
	"hourbank/internal/logging"
	"hourbank/internal/redis"
	"hourbank/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount        int32
	SetBankHoursCallCount  int32
	UpdateStatusCallCount  int32
	UpdateProfileCallCount int32

	// Error injection
	CreateError error
	GetError    error
	ListError   error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Username, user.Username) {
			return repository.ErrConflict
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return strings.EqualFold(u.Username, username) })
}

func (m *MockUserRepository) List(ctx context.Context, limit int) ([]*domain.User, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockUserRepository) mutate(id string, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(user)
	user.UpdatedAt = time.Now()
	return nil
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.UpdateProfileCallCount, 1)
	return m.mutate(user.ID, func(u *domain.User) {
		u.FirstName = user.FirstName
		u.LastName = user.LastName
		u.Skills = user.Skills
		u.Bio = user.Bio
		u.ProfilePicture = user.ProfilePicture
	})
}

func (m *MockUserRepository) SetBankHours(ctx context.Context, id string, hours float64) error {
	atomic.AddInt32(&m.SetBankHoursCallCount, 1)
	return m.mutate(id, func(u *domain.User) { u.BankHours = hours })
}

func (m *MockUserRepository) AdjustBankHours(ctx context.Context, id string, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if user.BankHours+delta < 0 {
		return 0, repository.ErrInsufficientBalance
	}
	user.BankHours += delta
	return user.BankHours, nil
}

func (m *MockUserRepository) IncrementTransactions(ctx context.Context, id string) error {
	return m.mutate(id, func(u *domain.User) { u.TotalTransactions++ })
}

func (m *MockUserRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	return m.mutate(id, func(u *domain.User) { u.Rating = rating })
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	return m.mutate(id, func(u *domain.User) { u.Status = status })
}

// GetUser returns the stored user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// ──────────────────────────────────────────────
// MOCK SERVICE REPOSITORY
// ──────────────────────────────────────────────

// MockServiceRepository is a mock implementation of ServiceRepository.
type MockServiceRepository struct {
	mu       sync.RWMutex
	services map[string]*domain.Service

	// Counters
	CreateCallCount int32
	DeleteCallCount int32

	// Last filter passed to List
	LastFilter domain.ServiceFilter

	// Error injection
	CreateError error
	ListError   error
}

// NewMockServiceRepository creates a new mock service repository.
func NewMockServiceRepository() *MockServiceRepository {
	return &MockServiceRepository{
		services: make(map[string]*domain.Service),
	}
}

// AddService adds a service to the mock repository.
func (m *MockServiceRepository) AddService(svc *domain.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[svc.ID] = svc
}

func (m *MockServiceRepository) Create(ctx context.Context, svc *domain.Service) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	copy := *svc
	m.services[svc.ID] = &copy
	return nil
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	svc, ok := m.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *svc
	return &copy, nil
}

func (m *MockServiceRepository) Update(ctx context.Context, svc *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.services[svc.ID]; !ok {
		return repository.ErrNotFound
	}
	svc.UpdatedAt = time.Now()
	copy := *svc
	m.services[svc.ID] = &copy
	return nil
}

func (m *MockServiceRepository) Delete(ctx context.Context, id string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.services, id)
	return nil
}

func (m *MockServiceRepository) List(ctx context.Context, filter domain.ServiceFilter) ([]*domain.Service, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	m.LastFilter = filter
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	query := strings.ToLower(filter.Query)
	result := make([]*domain.Service, 0)
	for _, svc := range m.services {
		if filter.ActiveOnly && !svc.IsActive {
			continue
		}
		if filter.Category != "" && svc.Category != filter.Category {
			continue
		}
		if filter.UserID != "" && svc.UserID != filter.UserID {
			continue
		}
		if query != "" && !matchesQuery(svc, query) {
			continue
		}
		copy := *svc
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*domain.Service{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matchesQuery(svc *domain.Service, query string) bool {
	if strings.Contains(strings.ToLower(svc.Title), query) ||
		strings.Contains(strings.ToLower(svc.Description), query) {
		return true
	}
	for _, tag := range svc.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// CountServices returns the number of stored services.
func (m *MockServiceRepository) CountServices() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.services)
}

// ──────────────────────────────────────────────
// MOCK SCHEDULE REPOSITORY
// ──────────────────────────────────────────────

// MockScheduleRepository is a mock implementation of ScheduleRepository.
type MockScheduleRepository struct {
	mu         sync.RWMutex
	schedules  map[string]*domain.ServiceSchedule
	exceptions map[string]*domain.ScheduleException

	CreateCallCount int32
}

// NewMockScheduleRepository creates a new mock schedule repository.
func NewMockScheduleRepository() *MockScheduleRepository {
	return &MockScheduleRepository{
		schedules:  make(map[string]*domain.ServiceSchedule),
		exceptions: make(map[string]*domain.ScheduleException),
	}
}

// AddSchedule adds a weekly window to the mock repository.
func (m *MockScheduleRepository) AddSchedule(schedule *domain.ServiceSchedule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[schedule.ID] = schedule
}

// AddException adds a date exception to the mock repository.
func (m *MockScheduleRepository) AddException(exception *domain.ScheduleException) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exceptions[exception.ID] = exception
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *domain.ServiceSchedule) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *schedule
	m.schedules[schedule.ID] = &copy
	return nil
}

func (m *MockScheduleRepository) GetByID(ctx context.Context, id string) (*domain.ServiceSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	schedule, ok := m.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *schedule
	return &copy, nil
}

func (m *MockScheduleRepository) Update(ctx context.Context, schedule *domain.ServiceSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[schedule.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *schedule
	m.schedules[schedule.ID] = &copy
	return nil
}

func (m *MockScheduleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *MockScheduleRepository) ListByService(ctx context.Context, serviceID string, activeOnly bool) ([]*domain.ServiceSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ServiceSchedule, 0)
	for _, s := range m.schedules {
		if s.ServiceID != serviceID || (activeOnly && !s.IsActive) {
			continue
		}
		copy := *s
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *MockScheduleRepository) CreateException(ctx context.Context, exception *domain.ScheduleException) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *exception
	m.exceptions[exception.ID] = &copy
	return nil
}

func (m *MockScheduleRepository) GetException(ctx context.Context, id string) (*domain.ScheduleException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exceptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *e
	return &copy, nil
}

func (m *MockScheduleRepository) ListExceptions(ctx context.Context, serviceID, date string) ([]*domain.ScheduleException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ScheduleException, 0)
	for _, e := range m.exceptions {
		if e.ServiceID != serviceID || (date != "" && e.ExceptionDate != date) {
			continue
		}
		copy := *e
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockScheduleRepository) DeleteException(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exceptions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.exceptions, id)
	return nil
}

// CountSchedules returns the number of stored weekly windows.
func (m *MockScheduleRepository) CountSchedules() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.schedules)
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error

	// AfterGet runs after GetByID has copied a booking, to simulate a
	// concurrent writer.
	AfterGet func(id string)
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	booking, ok := m.bookings[id]
	if !ok {
		m.mu.RUnlock()
		return nil, repository.ErrNotFound
	}
	copy := *booking
	m.mu.RUnlock()

	if m.AfterGet != nil {
		m.AfterGet(id)
	}
	return &copy, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.bookings[booking.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStaleStatus
	}
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) ListActiveByServiceAndDate(ctx context.Context, serviceID, date string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.ServiceID != serviceID || b.BookingDate != date || b.IsCancelled() {
			continue
		}
		copy := *b
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string, role domain.BookingRole, from, to string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		party := b.ConsumerID
		if role == domain.BookingRoleProvider {
			party = b.ProviderID
		}
		if party != userID {
			continue
		}
		if (from != "" && b.BookingDate < from) || (to != "" && b.BookingDate > to) {
			continue
		}
		copy := *b
		result = append(result, &copy)
	}
	return result, nil
}

// GetBooking returns the stored booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// ──────────────────────────────────────────────
// MOCK TRANSACTION REPOSITORY
// ──────────────────────────────────────────────

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	ListError error
}

// NewMockTransactionRepository creates a new mock transaction repository.
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

// AddTransaction adds a transaction to the mock repository.
func (m *MockTransactionRepository) AddTransaction(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt
	copy := *txn
	m.txns[txn.ID] = &copy
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	txn, ok := m.txns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *txn
	return &copy, nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, txn *domain.Transaction) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[txn.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *txn
	m.txns[txn.ID] = &copy
	return nil
}

func (m *MockTransactionRepository) list(match func(*domain.Transaction) bool) ([]*domain.Transaction, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Transaction, 0)
	for _, t := range m.txns {
		if match(t) {
			copy := *t
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	return m.list(func(t *domain.Transaction) bool { return t.Involves(userID) })
}

func (m *MockTransactionRepository) ListByProvider(ctx context.Context, providerID string) ([]*domain.Transaction, error) {
	return m.list(func(t *domain.Transaction) bool { return t.ProviderID == providerID })
}

func (m *MockTransactionRepository) List(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	result, err := m.list(func(*domain.Transaction) bool { return true })
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetTransaction returns the stored transaction for test assertions.
func (m *MockTransactionRepository) GetTransaction(id string) *domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.txns[id]
}

// ──────────────────────────────────────────────
// MOCK RATING REPOSITORY
// ──────────────────────────────────────────────

// MockRatingRepository is a mock implementation of RatingRepository.
type MockRatingRepository struct {
	mu      sync.RWMutex
	ratings map[string]*domain.Rating
}

// NewMockRatingRepository creates a new mock rating repository.
func NewMockRatingRepository() *MockRatingRepository {
	return &MockRatingRepository{
		ratings: make(map[string]*domain.Rating),
	}
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.ratings {
		if r.TransactionID == rating.TransactionID {
			return repository.ErrConflict
		}
	}
	copy := *rating
	m.ratings[rating.ID] = &copy
	return nil
}

func (m *MockRatingRepository) GetByTransaction(ctx context.Context, transactionID string) (*domain.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.ratings {
		if r.TransactionID == transactionID {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockRatingRepository) ListByRatedUser(ctx context.Context, userID string) ([]*domain.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Rating, 0)
	for _, r := range m.ratings {
		if r.RatedUserID == userID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification

	// Error injection
	CreateError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n.CreatedAt = time.Now()
	copy := *n
	m.notifications = append(m.notifications, &copy)
	return nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0)
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		copy := *n
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

// ForUser returns every notification addressed to userID, oldest first.
func (m *MockNotificationRepository) ForUser(userID string) []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of CacheStore.
type MockCacheStore struct {
	mu       sync.Mutex
	balances map[string]float64
	stats    *domain.AdminStats

	// Counters
	GetStatsCallCount     int32
	InvalidateStatsCount  int32
	InvalidateBalanceKeys []string
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		balances: make(map[string]float64),
	}
}

func (m *MockCacheStore) GetBalance(ctx context.Context, userID string) (*redis.CachedBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hours, ok := m.balances[userID]
	if !ok {
		return nil, nil
	}
	return &redis.CachedBalance{UserID: userID, BankHours: hours}, nil
}

func (m *MockCacheStore) SetBalance(ctx context.Context, balance *redis.CachedBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balance.UserID] = balance.BankHours
	return nil
}

func (m *MockCacheStore) InvalidateBalances(ctx context.Context, userIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range userIDs {
		delete(m.balances, id)
		m.InvalidateBalanceKeys = append(m.InvalidateBalanceKeys, id)
	}
	return nil
}

func (m *MockCacheStore) GetAdminStats(ctx context.Context) (*domain.AdminStats, error) {
	atomic.AddInt32(&m.GetStatsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return nil, nil
	}
	copy := *m.stats
	return &copy, nil
}

func (m *MockCacheStore) SetAdminStats(ctx context.Context, stats *domain.AdminStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *stats
	m.stats = &copy
	return nil
}

func (m *MockCacheStore) InvalidateAdminStats(ctx context.Context) error {
	atomic.AddInt32(&m.InvalidateStatsCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = nil
	return nil
}

// HasBalance reports whether a balance is cached for userID.
func (m *MockCacheStore) HasBalance(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.balances[userID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]mockLock
	seq   int

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

type mockLock struct {
	token   string
	expires time.Time
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]mockLock),
	}
}

func (m *MockLockStore) acquire(key string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, exists := m.locks[key]; exists && time.Now().Before(held.expires) {
		return "", false, nil
	}
	m.seq++
	token := fmt.Sprintf("token-%d", m.seq)
	m.locks[key] = mockLock{token: token, expires: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockLockStore) release(key, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if held, exists := m.locks[key]; exists && held.token == token {
		delete(m.locks, key)
	}
	return nil
}

func (m *MockLockStore) AcquireUserLock(ctx context.Context, userID string, ttl time.Duration) (string, bool, error) {
	return m.acquire("lock:user:"+userID, ttl)
}

func (m *MockLockStore) ReleaseUserLock(ctx context.Context, userID, token string) error {
	return m.release("lock:user:"+userID, token)
}

func (m *MockLockStore) AcquireSlotLock(ctx context.Context, serviceID, date string, ttl time.Duration) (string, bool, error) {
	return m.acquire("lock:slot:"+serviceID+":"+date, ttl)
}

func (m *MockLockStore) ReleaseSlotLock(ctx context.Context, serviceID, date, token string) error {
	return m.release("lock:slot:"+serviceID+":"+date, token)
}

// HoldUserLock marks a user lock as held by someone else.
func (m *MockLockStore) HoldUserLock(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks["lock:user:"+userID] = mockLock{token: "other", expires: time.Now().Add(time.Minute)}
}

// LockCount returns the number of held locks.
func (m *MockLockStore) LockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// ──────────────────────────────────────────────
// MOCK TOKEN ISSUER
// ──────────────────────────────────────────────

// MockTokenIssuer returns predictable tokens.
type MockTokenIssuer struct {
	IssueError error
}

func (m *MockTokenIssuer) Issue(userID string, role domain.UserRole) (string, time.Time, error) {
	if m.IssueError != nil {
		return "", time.Time{}, m.IssueError
	}
	return "token-" + userID, time.Now().Add(time.Hour), nil
}

// ──────────────────────────────────────────────
// LOGGING HELPERS
// ──────────────────────────────────────────────

// newTestLogger returns a discarding logger whose entries can be inspected.
func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	return logtest.NewNullLogger()
}

// newTestErrorLogger returns an ErrorLogger writing to a null logger.
func newTestErrorLogger() (*logging.ErrorLogger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	return logging.NewErrorLogger(log, 50), hook
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)

var (
	_ repository.UserRepository         = (*MockUserRepository)(nil)
	_ repository.ServiceRepository      = (*MockServiceRepository)(nil)
	_ repository.ScheduleRepository     = (*MockScheduleRepository)(nil)
	_ repository.BookingRepository      = (*MockBookingRepository)(nil)
	_ repository.TransactionRepository  = (*MockTransactionRepository)(nil)
	_ repository.RatingRepository       = (*MockRatingRepository)(nil)
	_ repository.NotificationRepository = (*MockNotificationRepository)(nil)
	_ redis.CacheStoreInterface         = (*MockCacheStore)(nil)
	_ redis.LockStoreInterface          = (*MockLockStore)(nil)
)
