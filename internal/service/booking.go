package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hourbank/internal/domain"
	"hourbank/internal/logging"
	"hourbank/internal/redis"
	"hourbank/internal/repository"
	"hourbank/internal/repository/postgres"
)

const slotLockTTL = 10 * time.Second

// BookingService handles scheduled reservations.
type BookingService struct {
	bookingRepo         repository.BookingRepository
	serviceRepo         repository.ServiceRepository
	userRepo            repository.UserRepository
	scheduleService     *ScheduleService
	ledger              *LedgerService
	notificationService *NotificationService
	lockStore           redis.LockStoreInterface
	errLog              *logging.ErrorLogger
	log                 logrus.FieldLogger
	now                 func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	scheduleService *ScheduleService,
	ledger *LedgerService,
	notificationService *NotificationService,
	lockStore redis.LockStoreInterface,
	errLog *logging.ErrorLogger,
	log logrus.FieldLogger,
) *BookingService {
	return &BookingService{
		bookingRepo:         bookingRepo,
		serviceRepo:         serviceRepo,
		userRepo:            userRepo,
		scheduleService:     scheduleService,
		ledger:              ledger,
		notificationService: notificationService,
		lockStore:           lockStore,
		errLog:              errLog,
		log:                 log,
		now:                 time.Now,
	}
}

// SetClock overrides the time source.
func (s *BookingService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateBookingRequest contains the parameters for booking a time slot.
type CreateBookingRequest struct {
	ServiceID string
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	Duration  float64
	Notes     string
}

// CreateBooking reserves a slot on a scheduled service for the consumer.
func (s *BookingService) CreateBooking(ctx context.Context, consumerID string, req CreateBookingRequest) (*domain.Booking, error) {
	if consumerID == "" {
		return nil, ErrInvalidUserID
	}
	if req.ServiceID == "" {
		return nil, ErrInvalidServiceID
	}

	svc, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	if !svc.RequiresScheduling {
		return nil, ErrSchedulingNotRequired
	}
	if svc.UserID == consumerID {
		return nil, ErrOwnService
	}

	consumer, err := s.userRepo.GetByID(ctx, consumerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.errLog.UserNotFound(ctx, consumerID, "CreateBooking", "BookingService")
		}
		return nil, err
	}
	if consumer.IsSuspended() {
		return nil, ErrUserSuspended
	}

	minHours, maxHours := svc.BookingBounds()
	if !validDuration(req.Duration) || req.Duration < minHours || req.Duration > maxHours {
		return nil, ErrInvalidDuration
	}

	now := s.now()
	day, err := time.ParseInLocation(domain.DateLayout, req.Date, now.Location())
	if err != nil {
		return nil, ErrInvalidDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return nil, ErrInvalidDate
	}
	if day.After(today.AddDate(0, 0, svc.BookingHorizonDays())) {
		return nil, ErrDateOutOfRange
	}

	start, err := domain.TimeToMinutes(req.StartTime)
	if err != nil {
		return nil, ErrSlotUnavailable
	}
	end := start + int(math.Round(req.Duration*60))

	cost := svc.Cost(req.Duration)
	if consumer.BankHours < cost {
		return nil, ErrInsufficientBalance
	}

	if s.lockStore != nil {
		token, ok, err := s.lockStore.AcquireSlotLock(ctx, svc.ID, req.Date, slotLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrResourceBusy
		}
		defer func() {
			if err := s.lockStore.ReleaseSlotLock(context.WithoutCancel(ctx), svc.ID, req.Date, token); err != nil {
				s.log.WithError(err).Warn("failed to release slot lock")
			}
		}()
	}

	slots, err := s.scheduleService.slotsFor(ctx, svc, req.Date, req.Duration)
	if err != nil {
		return nil, err
	}
	startTime := domain.MinutesToTime(start)
	available := false
	for _, slot := range slots {
		if slot.StartTime == startTime && slot.IsAvailable {
			available = true
			break
		}
	}
	if !available {
		return nil, ErrSlotUnavailable
	}

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		ServiceID:   svc.ID,
		ProviderID:  svc.UserID,
		ConsumerID:  consumerID,
		BookingDate: req.Date,
		StartTime:   startTime,
		EndTime:     domain.MinutesToTime(end),
		Duration:    req.Duration,
		TotalCost:   cost,
		Status:      domain.BookingStatusPending,
		Notes:       req.Notes,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.notificationService.NotifyBookingRequested(ctx, booking, svc); err != nil {
		s.log.WithError(err).Warn("failed to notify provider")
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"service_id": svc.ID,
		"date":       booking.BookingDate,
		"start":      booking.StartTime,
		"cost":       booking.TotalCost,
	}).Info("booking created")
	return booking, nil
}

// StatusUpdate carries a requested booking status change.
type StatusUpdate struct {
	Status        domain.BookingStatus
	ProviderNotes string
	Reason        string
}

// UpdateStatus moves a booking through its lifecycle on behalf of actorID.
func (s *BookingService) UpdateStatus(ctx context.Context, actorID, bookingID string, upd StatusUpdate) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	isProvider := actorID == booking.ProviderID
	isConsumer := actorID == booking.ConsumerID
	if !isProvider && !isConsumer {
		return nil, ErrForbidden
	}

	switch upd.Status {
	case domain.BookingStatusConfirmed, domain.BookingStatusInProgress, domain.BookingStatusCompleted,
		domain.BookingStatusCancelledByProvider, domain.BookingStatusNoShowConsumer:
		if !isProvider {
			return nil, ErrForbidden
		}
	case domain.BookingStatusCancelledByConsumer, domain.BookingStatusNoShowProvider:
		if !isConsumer {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrInvalidStatus
	}

	if !booking.CanTransition(upd.Status) {
		return nil, ErrInvalidStatusTransition
	}

	now := s.now()
	if upd.Status == domain.BookingStatusCancelledByConsumer && booking.Status == domain.BookingStatusConfirmed {
		if err := s.checkCancellationWindow(ctx, booking, now); err != nil {
			return nil, err
		}
	}

	from := booking.Status
	if upd.ProviderNotes != "" && isProvider {
		booking.ProviderNotes = upd.ProviderNotes
	}

	switch {
	case upd.Status == domain.BookingStatusCompleted:
		booking, err = s.complete(ctx, booking, now)
		if err != nil {
			return nil, err
		}
	default:
		booking.Status = upd.Status
		switch upd.Status {
		case domain.BookingStatusConfirmed:
			booking.ConfirmedAt = now
		case domain.BookingStatusCancelledByConsumer, domain.BookingStatusCancelledByProvider:
			booking.CancelledAt = now
			booking.CancellationReason = upd.Reason
		}
		if err := s.bookingRepo.Update(ctx, booking, from); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return nil, ErrInvalidStatusTransition
			}
			return nil, err
		}
	}

	if err := s.notificationService.NotifyBookingStatus(ctx, booking, actorID); err != nil {
		s.log.WithError(err).Warn("failed to notify booking party")
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"status":     booking.Status,
		"actor_id":   actorID,
	}).Info("booking status updated")
	return booking, nil
}

func (s *BookingService) checkCancellationWindow(ctx context.Context, booking *domain.Booking, now time.Time) error {
	svc, err := s.serviceRepo.GetByID(ctx, booking.ServiceID)
	if err != nil {
		return err
	}
	if svc.CancellationHours <= 0 {
		return nil
	}
	startsAt, err := booking.StartsAt(now.Location())
	if err != nil {
		return err
	}
	if startsAt.Sub(now) < time.Duration(svc.CancellationHours)*time.Hour {
		return ErrCancellationWindow
	}
	return nil
}

// complete records a COMPLETED transaction for the booking and pays the
// provider in the same SQL transaction.
func (s *BookingService) complete(ctx context.Context, booking *domain.Booking, now time.Time) (*domain.Booking, error) {
	txn := &domain.Transaction{
		ID:          uuid.New().String(),
		ProviderID:  booking.ProviderID,
		ConsumerID:  booking.ConsumerID,
		ServiceID:   booking.ServiceID,
		BookingID:   booking.ID,
		HoursSpent:  booking.TotalCost,
		Status:      domain.TransactionStatusInProgress,
		Description: "Booking " + booking.BookingDate + " " + booking.StartTime + "-" + booking.EndTime,
	}

	completed := *booking
	completed.Status = domain.BookingStatusCompleted
	completed.CompletedAt = now
	completed.TransactionID = txn.ID

	result, err := s.ledger.Transfer(ctx, TransferRequest{
		FromUserID:    booking.ConsumerID,
		ToUserID:      booking.ProviderID,
		Hours:         booking.TotalCost,
		TransactionID: txn.ID,
		Prepare: func(ctx context.Context, tx *sql.Tx) error {
			txBookingRepo := postgres.NewBookingRepositoryWithTx(tx)

			// Re-read under the user locks so a concurrent completion fails here.
			current, err := txBookingRepo.GetByID(ctx, booking.ID)
			if err != nil {
				return err
			}
			if current.Status != domain.BookingStatusInProgress {
				return ErrInvalidStatusTransition
			}

			if err := postgres.NewTransactionRepositoryWithTx(tx).Create(ctx, txn); err != nil {
				return err
			}
			return txBookingRepo.Update(ctx, &completed, domain.BookingStatusInProgress)
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.notificationService.NotifyHoursReceived(ctx, result); err != nil {
		s.log.WithError(err).Warn("failed to notify payee")
	}
	return &completed, nil
}

// Get returns a booking the caller takes part in.
func (s *BookingService) Get(ctx context.Context, actorID, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ProviderID != actorID && booking.ConsumerID != actorID {
		return nil, ErrForbidden
	}
	return booking, nil
}

// ListBookings returns a user's bookings in one role, or both when role is empty.
func (s *BookingService) ListBookings(ctx context.Context, userID string, role domain.BookingRole, from, to string) ([]*domain.Booking, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, d); err != nil {
			return nil, ErrInvalidDate
		}
	}

	switch role {
	case domain.BookingRoleProvider, domain.BookingRoleConsumer:
		return s.bookingRepo.ListByUser(ctx, userID, role, from, to)
	case "":
	default:
		return nil, ErrInvalidStatus
	}

	provided, err := s.bookingRepo.ListByUser(ctx, userID, domain.BookingRoleProvider, from, to)
	if err != nil {
		return nil, err
	}
	consumed, err := s.bookingRepo.ListByUser(ctx, userID, domain.BookingRoleConsumer, from, to)
	if err != nil {
		return nil, err
	}
	all := append(provided, consumed...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].BookingDate != all[j].BookingDate {
			return all[i].BookingDate < all[j].BookingDate
		}
		return all[i].StartTime < all[j].StartTime
	})
	return all, nil
}

// CalendarEvents projects bookings onto calendar events titled
// "<service> - <consumer first name>".
func (s *BookingService) CalendarEvents(ctx context.Context, bookings []*domain.Booking) []domain.BookingCalendarEvent {
	titles := make(map[string]string)
	names := make(map[string]string)
	loc := s.now().Location()

	events := make([]domain.BookingCalendarEvent, 0, len(bookings))
	for _, b := range bookings {
		title, ok := titles[b.ServiceID]
		if !ok {
			title = "Service"
			if svc, err := s.serviceRepo.GetByID(ctx, b.ServiceID); err == nil && svc.Title != "" {
				title = svc.Title
			}
			titles[b.ServiceID] = title
		}
		name, ok := names[b.ConsumerID]
		if !ok {
			name = "Consumer"
			if u, err := s.userRepo.GetByID(ctx, b.ConsumerID); err == nil && u.FirstName != "" {
				name = u.FirstName
			}
			names[b.ConsumerID] = name
		}

		day, err := time.ParseInLocation(domain.DateLayout, b.BookingDate, loc)
		if err != nil {
			continue
		}
		startMin, err1 := domain.TimeToMinutes(b.StartTime)
		endMin, err2 := domain.TimeToMinutes(b.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		start := day.Add(time.Duration(startMin) * time.Minute)
		end := day.Add(time.Duration(endMin) * time.Minute)

		events = append(events, domain.BookingCalendarEvent{
			ID:      b.ID,
			Title:   title + " - " + name,
			Start:   start,
			End:     end,
			Color:   b.Color(),
			Booking: b,
		})
	}
	return events
}
