package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

// ServiceRepository implements repository.ServiceRepository using PostgreSQL.
type ServiceRepository struct {
	q Querier
}

// NewServiceRepository creates a new ServiceRepository.
func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{q: db}
}

const serviceColumns = `id, user_id, title, description, category, hourly_duration, is_active, tags,
	requires_scheduling, min_booking_hours, max_booking_hours, advance_booking_days, cancellation_hours,
	created_at, updated_at`

// Create adds a new service.
func (r *ServiceRepository) Create(ctx context.Context, svc *domain.Service) error {
	query := `
		INSERT INTO services (id, user_id, title, description, category, hourly_duration, is_active, tags,
			requires_scheduling, min_booking_hours, max_booking_hours, advance_booking_days, cancellation_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		svc.ID,
		svc.UserID,
		svc.Title,
		svc.Description,
		svc.Category,
		svc.HourlyDuration,
		svc.IsActive,
		textArray(svc.Tags),
		svc.RequiresScheduling,
		svc.MinBookingHours,
		svc.MaxBookingHours,
		svc.AdvanceBookingDays,
		svc.CancellationHours,
	).Scan(&svc.CreatedAt, &svc.UpdatedAt)
	return mapWriteError(err)
}

// GetByID retrieves a service by ID.
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := scanService(r.q.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// Update updates an existing service.
func (r *ServiceRepository) Update(ctx context.Context, svc *domain.Service) error {
	query := `
		UPDATE services
		SET title = $1, description = $2, category = $3, hourly_duration = $4, is_active = $5, tags = $6,
			requires_scheduling = $7, min_booking_hours = $8, max_booking_hours = $9,
			advance_booking_days = $10, cancellation_hours = $11, updated_at = now()
		WHERE id = $12
		RETURNING updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		svc.Title,
		svc.Description,
		svc.Category,
		svc.HourlyDuration,
		svc.IsActive,
		textArray(svc.Tags),
		svc.RequiresScheduling,
		svc.MinBookingHours,
		svc.MaxBookingHours,
		svc.AdvanceBookingDays,
		svc.CancellationHours,
		svc.ID,
	).Scan(&svc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// Delete removes a service.
func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// List retrieves services matching the filter, newest first.
func (r *ServiceRepository) List(ctx context.Context, filter domain.ServiceFilter) ([]*domain.Service, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(lower(title) LIKE $%d OR lower(description) LIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE lower(t) LIKE $%d))",
			n, n, n))
	}

	query := `SELECT ` + serviceColumns + ` FROM services`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*domain.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func scanService(row rowScanner) (*domain.Service, error) {
	var svc domain.Service
	var tags pq.StringArray
	err := row.Scan(
		&svc.ID,
		&svc.UserID,
		&svc.Title,
		&svc.Description,
		&svc.Category,
		&svc.HourlyDuration,
		&svc.IsActive,
		&tags,
		&svc.RequiresScheduling,
		&svc.MinBookingHours,
		&svc.MaxBookingHours,
		&svc.AdvanceBookingDays,
		&svc.CancellationHours,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	svc.Tags = []string(tags)
	return &svc, nil
}

// Ensure ServiceRepository implements repository.ServiceRepository.
var _ repository.ServiceRepository = (*ServiceRepository)(nil)
