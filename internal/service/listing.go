package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hourbank/internal/domain"
	"hourbank/internal/logging"
	"hourbank/internal/repository"
)

const (
	maxBookingHoursCap = 24.0
	defaultListLimit   = 50
	maxListLimit       = 200
)

// ListingService manages the services users offer.
type ListingService struct {
	serviceRepo repository.ServiceRepository
	userRepo    repository.UserRepository
	errLog      *logging.ErrorLogger
	log         logrus.FieldLogger
}

// NewListingService creates a new ListingService.
func NewListingService(
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	errLog *logging.ErrorLogger,
	log logrus.FieldLogger,
) *ListingService {
	return &ListingService{
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		errLog:      errLog,
		log:         log,
	}
}

// ServiceInput carries the writable fields of a service.
type ServiceInput struct {
	Title              string
	Description        string
	Category           string
	HourlyDuration     float64
	Tags               []string
	IsActive           *bool
	RequiresScheduling bool
	MinBookingHours    float64
	MaxBookingHours    float64
	AdvanceBookingDays int
	CancellationHours  int
}

// CreateService lists a new service for the owner.
func (s *ListingService) CreateService(ctx context.Context, ownerID string, in ServiceInput) (*domain.Service, error) {
	if ownerID == "" {
		return nil, ErrInvalidUserID
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.errLog.UserNotFound(ctx, ownerID, "CreateService", "ListingService")
		}
		return nil, err
	}
	if owner.IsSuspended() {
		return nil, ErrUserSuspended
	}

	svc := &domain.Service{
		ID:       uuid.New().String(),
		UserID:   ownerID,
		IsActive: true,
	}
	if err := applyServiceInput(svc, in); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		s.errLog.ServiceError(ctx, svc.ID, "CreateService", err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"service_id": svc.ID,
		"user_id":    ownerID,
		"category":   svc.Category,
	}).Info("service created")
	return svc, nil
}

// UpdateService replaces the writable fields of an owned service.
func (s *ListingService) UpdateService(ctx context.Context, ownerID, serviceID string, in ServiceInput) (*domain.Service, error) {
	svc, err := s.owned(ctx, ownerID, serviceID)
	if err != nil {
		return nil, err
	}
	if err := applyServiceInput(svc, in); err != nil {
		return nil, err
	}
	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		s.errLog.ServiceError(ctx, svc.ID, "UpdateService", err)
		return nil, err
	}
	return svc, nil
}

// DeleteService removes an owned service.
func (s *ListingService) DeleteService(ctx context.Context, ownerID, serviceID string) error {
	if _, err := s.owned(ctx, ownerID, serviceID); err != nil {
		return err
	}
	return s.serviceRepo.Delete(ctx, serviceID)
}

// GetService retrieves a service by ID.
func (s *ListingService) GetService(ctx context.Context, serviceID string) (*domain.Service, error) {
	if serviceID == "" {
		return nil, ErrInvalidServiceID
	}
	return s.serviceRepo.GetByID(ctx, serviceID)
}

// ListServices browses services. Only active services are returned unless
// includeInactive is set.
func (s *ListingService) ListServices(ctx context.Context, filter domain.ServiceFilter, includeInactive bool) ([]*domain.Service, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Query = strings.TrimSpace(filter.Query)
	filter.ActiveOnly = !includeInactive
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.serviceRepo.List(ctx, filter)
}

// ListByUser returns the services a user offers. Inactive services are
// included only for the owner.
func (s *ListingService) ListByUser(ctx context.Context, viewerID, userID string) ([]*domain.Service, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.serviceRepo.List(ctx, domain.ServiceFilter{
		UserID:     userID,
		ActiveOnly: viewerID != userID,
	})
}

func (s *ListingService) owned(ctx context.Context, ownerID, serviceID string) (*domain.Service, error) {
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

func applyServiceInput(svc *domain.Service, in ServiceInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || in.Description == "" || in.Category == "" {
		return ErrInvalidService
	}

	minHours, maxHours := in.MinBookingHours, in.MaxBookingHours
	if minHours == 0 {
		minHours = domain.DefaultMinBookingHours
	}
	if maxHours == 0 {
		maxHours = domain.DefaultMaxBookingHours
	}
	if minHours <= 0 || maxHours <= 0 || minHours > maxHours || maxHours > maxBookingHoursCap ||
		math.IsNaN(minHours) || math.IsNaN(maxHours) {
		return ErrInvalidBookingBounds
	}
	if in.AdvanceBookingDays < 0 || in.CancellationHours < 0 {
		return ErrInvalidBookingBounds
	}

	svc.Title = in.Title
	svc.Description = in.Description
	svc.Category = in.Category
	svc.HourlyDuration = domain.NormalizeHourlyDuration(in.HourlyDuration)
	svc.Tags = cleanList(in.Tags)
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}
	svc.RequiresScheduling = in.RequiresScheduling
	svc.MinBookingHours = minHours
	svc.MaxBookingHours = maxHours
	svc.AdvanceBookingDays = in.AdvanceBookingDays
	if svc.AdvanceBookingDays == 0 {
		svc.AdvanceBookingDays = domain.DefaultAdvanceBookingDays
	}
	svc.CancellationHours = in.CancellationHours
	return nil
}
