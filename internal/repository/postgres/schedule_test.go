package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

var exceptionRowColumns = []string{
	"id", "service_id", "user_id", "exception_date", "exception_type",
	"start_time", "end_time", "reason", "created_at", "updated_at",
}

func TestScheduleRepository_ListExceptionsForDate(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	// Holidays store NULL hours; the query coalesces them to empty strings.
	mock.ExpectQuery("COALESCE\\(start_time, ''\\), COALESCE\\(end_time, ''\\).+WHERE service_id = \\$1 AND exception_date = \\$2").
		WithArgs("s1", "2025-06-12").
		WillReturnRows(sqlmock.NewRows(exceptionRowColumns).
			AddRow("e1", "s1", "u1", "2025-06-12", "HOLIDAY", "", "", "Away", now, now).
			AddRow("e2", "s1", "u1", "2025-06-12", "CUSTOM_HOURS", "18:00", "20:00", "", now, now))

	exceptions, err := NewScheduleRepository(db).ListExceptions(context.Background(), "s1", "2025-06-12")
	require.NoError(t, err)
	require.Len(t, exceptions, 2)

	assert.Equal(t, domain.ScheduleExceptionHoliday, exceptions[0].Type)
	assert.Empty(t, exceptions[0].StartTime)
	assert.Empty(t, exceptions[0].EndTime)
	assert.Equal(t, "2025-06-12", exceptions[0].ExceptionDate)
	assert.Equal(t, "18:00", exceptions[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_CreateHolidayStoresNullHours(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	e := &domain.ScheduleException{
		ID: "e1", ServiceID: "s1", UserID: "u1", ExceptionDate: "2025-06-12",
		Type: domain.ScheduleExceptionHoliday, Reason: "Away",
	}

	mock.ExpectQuery("INSERT INTO schedule_exceptions").
		WithArgs("e1", "s1", "u1", "2025-06-12", "HOLIDAY", nil, nil, "Away").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, NewScheduleRepository(db).CreateException(context.Background(), e))
	assert.Equal(t, now, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_GetExceptionNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM schedule_exceptions WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := NewScheduleRepository(db).GetException(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduleRepository_DeleteException(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("DELETE FROM schedule_exceptions WHERE id = \\$1").
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM schedule_exceptions WHERE id = \\$1").
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewScheduleRepository(db)
	require.NoError(t, repo.DeleteException(context.Background(), "e1"))
	assert.ErrorIs(t, repo.DeleteException(context.Background(), "e1"), repository.ErrNotFound)
}

func TestScheduleRepository_ListByServiceActiveOnly(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("WHERE service_id = \\$1 AND is_active = TRUE ORDER BY day_of_week, start_time").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "service_id", "user_id", "day_of_week", "start_time", "end_time", "is_active", "created_at", "updated_at",
		}).AddRow("sc1", "s1", "u1", 4, "09:00", "17:00", true, now, now))

	schedules, err := NewScheduleRepository(db).ListByService(context.Background(), "s1", true)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, 4, schedules[0].DayOfWeek)
}
