package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

const (
	slotStepMinutes  = 30
	slotBookedReason = "Time slot already booked"
	slotPastReason   = "Time slot has already started"
)

// ScheduleService manages weekly availability and computes bookable slots.
type ScheduleService struct {
	scheduleRepo repository.ScheduleRepository
	serviceRepo  repository.ServiceRepository
	bookingRepo  repository.BookingRepository
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	scheduleRepo repository.ScheduleRepository,
	serviceRepo repository.ServiceRepository,
	bookingRepo repository.BookingRepository,
	log logrus.FieldLogger,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		serviceRepo:  serviceRepo,
		bookingRepo:  bookingRepo,
		log:          log,
		now:          time.Now,
	}
}

// SetClock overrides the time source.
func (s *ScheduleService) SetClock(now func() time.Time) {
	s.now = now
}

// ScheduleInput carries the writable fields of a weekly schedule.
type ScheduleInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	IsActive  *bool
}

// CreateSchedule adds a weekly window to an owned service.
func (s *ScheduleService) CreateSchedule(ctx context.Context, ownerID, serviceID string, in ScheduleInput) (*domain.ServiceSchedule, error) {
	svc, err := s.ownedService(ctx, ownerID, serviceID)
	if err != nil {
		return nil, err
	}

	schedule := &domain.ServiceSchedule{
		ID:        uuid.New().String(),
		ServiceID: svc.ID,
		UserID:    ownerID,
		IsActive:  true,
	}
	if err := s.applyScheduleInput(ctx, schedule, in); err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"service_id": svc.ID,
		"day":        domain.DayName(schedule.DayOfWeek),
		"start":      schedule.StartTime,
		"end":        schedule.EndTime,
	}).Info("schedule created")
	return schedule, nil
}

// UpdateSchedule replaces an owned weekly window.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, ownerID, scheduleID string, in ScheduleInput) (*domain.ServiceSchedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.UserID != ownerID {
		return nil, ErrForbidden
	}
	if err := s.applyScheduleInput(ctx, schedule, in); err != nil {
		return nil, err
	}
	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// DeleteSchedule removes an owned weekly window.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, ownerID, scheduleID string) error {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if schedule.UserID != ownerID {
		return ErrForbidden
	}
	return s.scheduleRepo.Delete(ctx, scheduleID)
}

// ListSchedules returns the weekly windows of a service.
func (s *ScheduleService) ListSchedules(ctx context.Context, serviceID string, activeOnly bool) ([]*domain.ServiceSchedule, error) {
	if serviceID == "" {
		return nil, ErrInvalidServiceID
	}
	return s.scheduleRepo.ListByService(ctx, serviceID, activeOnly)
}

// ExceptionInput carries a date exception.
type ExceptionInput struct {
	Date      string
	Type      domain.ScheduleExceptionType
	StartTime string
	EndTime   string
	Reason    string
}

// CreateException blocks a date or replaces its hours.
func (s *ScheduleService) CreateException(ctx context.Context, ownerID, serviceID string, in ExceptionInput) (*domain.ScheduleException, error) {
	svc, err := s.ownedService(ctx, ownerID, serviceID)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(domain.DateLayout, in.Date); err != nil {
		return nil, ErrInvalidDate
	}

	exception := &domain.ScheduleException{
		ID:            uuid.New().String(),
		ServiceID:     svc.ID,
		UserID:        ownerID,
		ExceptionDate: in.Date,
		Type:          in.Type,
		Reason:        in.Reason,
	}

	switch in.Type {
	case domain.ScheduleExceptionUnavailable, domain.ScheduleExceptionHoliday:
	case domain.ScheduleExceptionCustomHours:
		start, end, err := parseRange(in.StartTime, in.EndTime)
		if err != nil {
			return nil, err
		}
		exception.StartTime = domain.MinutesToTime(start)
		exception.EndTime = domain.MinutesToTime(end)
	default:
		return nil, ErrInvalidSchedule
	}

	if err := s.scheduleRepo.CreateException(ctx, exception); err != nil {
		return nil, err
	}
	return exception, nil
}

// ListExceptions returns the exceptions of a service.
func (s *ScheduleService) ListExceptions(ctx context.Context, serviceID string) ([]*domain.ScheduleException, error) {
	if serviceID == "" {
		return nil, ErrInvalidServiceID
	}
	return s.scheduleRepo.ListExceptions(ctx, serviceID, "")
}

// DeleteException removes an owned date exception, reopening the date.
func (s *ScheduleService) DeleteException(ctx context.Context, ownerID, exceptionID string) error {
	exception, err := s.scheduleRepo.GetException(ctx, exceptionID)
	if err != nil {
		return err
	}
	if exception.UserID != ownerID {
		return ErrForbidden
	}
	if err := s.scheduleRepo.DeleteException(ctx, exceptionID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"exception_id": exceptionID,
		"service_id":   exception.ServiceID,
		"date":         exception.ExceptionDate,
	}).Info("schedule exception removed")
	return nil
}

// GetAvailableTimeSlots lists the start times on date at which a booking of
// duration hours fits the service's schedule.
func (s *ScheduleService) GetAvailableTimeSlots(ctx context.Context, serviceID, date string, duration float64) ([]domain.TimeSlot, error) {
	if serviceID == "" {
		return nil, ErrInvalidServiceID
	}
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return s.slotsFor(ctx, svc, date, duration)
}

func (s *ScheduleService) slotsFor(ctx context.Context, svc *domain.Service, date string, duration float64) ([]domain.TimeSlot, error) {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if duration == 0 {
		duration = 1
	}
	if !validDuration(duration) {
		return nil, ErrInvalidDuration
	}
	durationMin := int(math.Round(duration * 60))

	windows, err := s.windowsFor(ctx, svc.ID, date, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []domain.TimeSlot{}, nil
	}

	bookings, err := s.bookingRepo.ListActiveByServiceAndDate(ctx, svc.ID, date)
	if err != nil {
		return nil, err
	}
	booked := make([][2]int, 0, len(bookings))
	for _, b := range bookings {
		if !b.HoldsSlot() {
			continue
		}
		bStart, err1 := domain.TimeToMinutes(b.StartTime)
		bEnd, err2 := domain.TimeToMinutes(b.EndTime)
		if err1 != nil || err2 != nil {
			s.log.WithField("booking_id", b.ID).Warn("skipping booking with malformed times")
			continue
		}
		booked = append(booked, [2]int{bStart, bEnd})
	}

	now := s.now()
	cutoff := -1
	if now.Format(domain.DateLayout) == date {
		cutoff = now.Hour()*60 + now.Minute()
	}

	seen := make(map[int]bool)
	var slots []domain.TimeSlot
	for _, w := range windows {
		for start := w[0]; start+durationMin <= w[1]; start += slotStepMinutes {
			if seen[start] {
				continue
			}
			seen[start] = true

			end := start + durationMin
			slot := domain.TimeSlot{
				StartTime:   domain.MinutesToTime(start),
				EndTime:     domain.MinutesToTime(end),
				IsAvailable: true,
			}
			if start <= cutoff {
				slot.IsAvailable = false
				slot.ConflictReason = slotPastReason
			}
			for _, b := range booked {
				if domain.Overlaps(start, end, b[0], b[1]) {
					slot.IsAvailable = false
					slot.ConflictReason = slotBookedReason
					break
				}
			}
			slots = append(slots, slot)
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots, nil
}

// windowsFor returns the [start, end) minute windows open on a date.
func (s *ScheduleService) windowsFor(ctx context.Context, serviceID, date string, weekday int) ([][2]int, error) {
	exceptions, err := s.scheduleRepo.ListExceptions(ctx, serviceID, date)
	if err != nil {
		return nil, err
	}

	var custom [][2]int
	for _, e := range exceptions {
		if e.BlocksDay() {
			return nil, nil
		}
		if e.Type == domain.ScheduleExceptionCustomHours {
			start, end, err := parseRange(e.StartTime, e.EndTime)
			if err == nil {
				custom = append(custom, [2]int{start, end})
			}
		}
	}
	if len(custom) > 0 {
		return custom, nil
	}

	schedules, err := s.scheduleRepo.ListByService(ctx, serviceID, true)
	if err != nil {
		return nil, err
	}
	var windows [][2]int
	for _, sch := range schedules {
		if sch.DayOfWeek != weekday || !sch.IsActive {
			continue
		}
		start, end, err := parseRange(sch.StartTime, sch.EndTime)
		if err != nil {
			continue
		}
		windows = append(windows, [2]int{start, end})
	}
	return windows, nil
}

func (s *ScheduleService) applyScheduleInput(ctx context.Context, schedule *domain.ServiceSchedule, in ScheduleInput) error {
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return ErrInvalidSchedule
	}
	start, end, err := parseRange(in.StartTime, in.EndTime)
	if err != nil {
		return err
	}
	if in.IsActive != nil {
		schedule.IsActive = *in.IsActive
	}
	schedule.DayOfWeek = in.DayOfWeek
	schedule.StartTime = domain.MinutesToTime(start)
	schedule.EndTime = domain.MinutesToTime(end)

	if !schedule.IsActive {
		return nil
	}

	existing, err := s.scheduleRepo.ListByService(ctx, schedule.ServiceID, true)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == schedule.ID || other.DayOfWeek != schedule.DayOfWeek {
			continue
		}
		oStart, oEnd, err := parseRange(other.StartTime, other.EndTime)
		if err != nil {
			continue
		}
		if domain.Overlaps(start, end, oStart, oEnd) {
			return ErrScheduleOverlap
		}
	}
	return nil
}

func (s *ScheduleService) ownedService(ctx context.Context, ownerID, serviceID string) (*domain.Service, error) {
	if serviceID == "" {
		return nil, ErrInvalidServiceID
	}
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.UserID != ownerID {
		return nil, ErrForbidden
	}
	return svc, nil
}

// parseRange parses an "HH:MM" pair and requires start < end.
func parseRange(startTime, endTime string) (int, int, error) {
	start, err := domain.TimeToMinutes(startTime)
	if err != nil {
		return 0, 0, ErrInvalidSchedule
	}
	end, err := domain.TimeToMinutes(endTime)
	if err != nil {
		return 0, 0, ErrInvalidSchedule
	}
	if start >= end {
		return 0, 0, ErrInvalidSchedule
	}
	return start, end, nil
}

// validDuration reports whether hours is a positive multiple of half an hour.
func validDuration(hours float64) bool {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return false
	}
	halves := hours * 2
	return math.Abs(halves-math.Round(halves)) < 1e-9
}
