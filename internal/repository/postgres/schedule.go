package postgres

import (
	"context"
	"database/sql"
	"errors"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

// ScheduleRepository implements repository.ScheduleRepository using PostgreSQL.
type ScheduleRepository struct {
	q Querier
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{q: db}
}

const scheduleColumns = `id, service_id, user_id, day_of_week, start_time, end_time, is_active, created_at, updated_at`

const exceptionColumns = `id, service_id, user_id, to_char(exception_date, 'YYYY-MM-DD'), exception_type,
	COALESCE(start_time, ''), COALESCE(end_time, ''), reason, created_at, updated_at`

// Create adds a new weekly schedule row.
func (r *ScheduleRepository) Create(ctx context.Context, s *domain.ServiceSchedule) error {
	query := `
		INSERT INTO service_schedules (id, service_id, user_id, day_of_week, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		s.ID, s.ServiceID, s.UserID, s.DayOfWeek, s.StartTime, s.EndTime, s.IsActive,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapWriteError(err)
}

// GetByID retrieves a schedule by ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*domain.ServiceSchedule, error) {
	s, err := scanSchedule(r.q.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM service_schedules WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Update updates an existing schedule.
func (r *ScheduleRepository) Update(ctx context.Context, s *domain.ServiceSchedule) error {
	query := `
		UPDATE service_schedules
		SET day_of_week = $1, start_time = $2, end_time = $3, is_active = $4, updated_at = now()
		WHERE id = $5
	`
	result, err := r.q.ExecContext(ctx, query, s.DayOfWeek, s.StartTime, s.EndTime, s.IsActive, s.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Delete removes a schedule.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM service_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// ListByService retrieves the schedules of a service ordered by day and start time.
func (r *ScheduleRepository) ListByService(ctx context.Context, serviceID string, activeOnly bool) ([]*domain.ServiceSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM service_schedules WHERE service_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY day_of_week, start_time`

	rows, err := r.q.QueryContext(ctx, query, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*domain.ServiceSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// CreateException adds a date exception.
func (r *ScheduleRepository) CreateException(ctx context.Context, e *domain.ScheduleException) error {
	query := `
		INSERT INTO schedule_exceptions (id, service_id, user_id, exception_date, exception_type, start_time, end_time, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.q.QueryRowContext(ctx, query,
		e.ID, e.ServiceID, e.UserID, e.ExceptionDate, e.Type,
		nullString(e.StartTime), nullString(e.EndTime), e.Reason,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return mapWriteError(err)
}

// ListExceptions retrieves exceptions for a service, optionally for one date.
func (r *ScheduleRepository) ListExceptions(ctx context.Context, serviceID, date string) ([]*domain.ScheduleException, error) {
	query := `SELECT ` + exceptionColumns + ` FROM schedule_exceptions WHERE service_id = $1`
	args := []any{serviceID}
	if date != "" {
		query += ` AND exception_date = $2`
		args = append(args, date)
	}
	query += ` ORDER BY exception_date`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exceptions []*domain.ScheduleException
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		exceptions = append(exceptions, e)
	}
	return exceptions, rows.Err()
}

// GetException retrieves a date exception by ID.
func (r *ScheduleRepository) GetException(ctx context.Context, id string) (*domain.ScheduleException, error) {
	e, err := scanException(r.q.QueryRowContext(ctx,
		`SELECT `+exceptionColumns+` FROM schedule_exceptions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteException removes a date exception.
func (r *ScheduleRepository) DeleteException(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM schedule_exceptions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func scanSchedule(row rowScanner) (*domain.ServiceSchedule, error) {
	var s domain.ServiceSchedule
	err := row.Scan(&s.ID, &s.ServiceID, &s.UserID, &s.DayOfWeek, &s.StartTime, &s.EndTime,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanException(row rowScanner) (*domain.ScheduleException, error) {
	var e domain.ScheduleException
	err := row.Scan(&e.ID, &e.ServiceID, &e.UserID, &e.ExceptionDate, &e.Type,
		&e.StartTime, &e.EndTime, &e.Reason, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Ensure ScheduleRepository implements repository.ScheduleRepository.
var _ repository.ScheduleRepository = (*ScheduleRepository)(nil)
