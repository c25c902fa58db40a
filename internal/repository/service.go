package repository

import (
	"context"

	"hourbank/internal/domain"
)

// ServiceRepository defines the persistence operations for service listings.
type ServiceRepository interface {
	// Create persists a new service.
	Create(ctx context.Context, svc *domain.Service) error

	// GetByID retrieves a service by ID.
	GetByID(ctx context.Context, id string) (*domain.Service, error)

	// Update updates an existing service.
	Update(ctx context.Context, svc *domain.Service) error

	// Delete removes a service.
	Delete(ctx context.Context, id string) error

	// List retrieves services matching the filter.
	List(ctx context.Context, filter domain.ServiceFilter) ([]*domain.Service, error)
}
