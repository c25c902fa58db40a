package repository

import (
	"context"

	"hourbank/internal/domain"
)

// ScheduleRepository defines the persistence operations for weekly schedules
// and their date exceptions.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.ServiceSchedule) error
	GetByID(ctx context.Context, id string) (*domain.ServiceSchedule, error)
	Update(ctx context.Context, schedule *domain.ServiceSchedule) error
	Delete(ctx context.Context, id string) error

	// ListByService retrieves the schedules of a service.
	ListByService(ctx context.Context, serviceID string, activeOnly bool) ([]*domain.ServiceSchedule, error)

	CreateException(ctx context.Context, exception *domain.ScheduleException) error
	GetException(ctx context.Context, id string) (*domain.ScheduleException, error)

	// ListExceptions retrieves exceptions for a service. An empty date returns all.
	ListExceptions(ctx context.Context, serviceID, date string) ([]*domain.ScheduleException, error)

	DeleteException(ctx context.Context, id string) error
}
