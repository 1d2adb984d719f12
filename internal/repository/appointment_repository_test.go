package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imanubhardwaj/easyappointments/internal/models"
)

func newAppointmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func appointmentRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "provider_id", "service_id", "customer_id", "start_datetime", "end_datetime", "is_unavailable", "hash", "notes", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, "p1", "s1", "c1", time.Now(), time.Now().Add(30*time.Minute), false, "h-"+id, "", time.Now(), time.Now())
	}
	return rows
}

func TestAppointmentRepositoryListOverlapping(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, provider_id, service_id, customer_id, start_datetime, end_datetime, is_unavailable, hash, notes, created_at, updated_at FROM appointments WHERE provider_id = $1 AND start_datetime < $2 AND end_datetime > $3 ORDER BY start_datetime ASC")).
		WithArgs("p1", to, from).
		WillReturnRows(appointmentRows("a1", "a2"))

	list, err := repo.ListOverlapping(context.Background(), "p1", from, to, nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListOverlappingExcludes(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("AND id NOT IN ($4) ORDER BY start_datetime ASC")).
		WithArgs("p1", to, from, "a9").
		WillReturnRows(appointmentRows("a1"))

	list, err := repo.ListOverlapping(context.Background(), "p1", from, to, []string{"a9"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCountAttendantsBoundaries(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	slotStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	slotEnd := slotStart.Add(30 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE service_id = $1 AND is_unavailable = FALSE AND start_datetime < $2 AND end_datetime > $3")).
		WithArgs("s1", slotEnd, slotStart).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountAttendants(context.Background(), "s1", slotStart, slotEnd, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCountAttendantsExcludes(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	slotStart := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	slotEnd := slotStart.Add(30 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("end_datetime > $3 AND id NOT IN ($4)")).
		WithArgs("s1", slotEnd, slotStart, "mine").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountAttendants(context.Background(), "s1", slotStart, slotEnd, []string{"mine"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE 1 = 1 AND provider_id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY start_datetime ASC LIMIT $2 OFFSET $3")).
		WithArgs("p1", 20, 0).
		WillReturnRows(appointmentRows("a1"))

	list, total, err := repo.List(context.Background(), models.AppointmentFilter{ProviderID: "p1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookAtomically(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{
		ProviderID:    "p1",
		StartDatetime: start,
		EndDatetime:   start.Add(30 * time.Minute),
		Hash:          "h1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE provider_id = $1 AND start_datetime < $2 AND end_datetime > $3")).
		WithArgs("p1", appt.EndDatetime, appt.StartDatetime).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.BookAtomically(context.Background(), appt, 1))
	assert.NotEmpty(t, appt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookAtomicallyConflict(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{
		ProviderID:    "p1",
		StartDatetime: start,
		EndDatetime:   start.Add(30 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE provider_id = $1")).
		WithArgs("p1", appt.EndDatetime, appt.StartDatetime).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.BookAtomically(context.Background(), appt, 1)
	assert.ErrorIs(t, err, ErrBookingConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookAtomicallyCapacity(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{
		ProviderID:    "p1",
		ServiceID:     nullString("s1"),
		StartDatetime: start,
		EndDatetime:   start.Add(30 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM appointments WHERE service_id = $1 AND is_unavailable = FALSE")).
		WithArgs("s1", appt.EndDatetime, appt.StartDatetime).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.BookAtomically(context.Background(), appt, 3)
	assert.ErrorIs(t, err, ErrBookingConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBookAtomicallyCapacityExcludesSelf(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{
		ID:            "mine",
		ProviderID:    "p1",
		ServiceID:     nullString("s1"),
		StartDatetime: start,
		EndDatetime:   start.Add(30 * time.Minute),
		Hash:          "h1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("end_datetime > $3 AND id != $4")).
		WithArgs("s1", appt.EndDatetime, appt.StartDatetime, "mine").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.BookAtomically(context.Background(), appt, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newAppointmentRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
