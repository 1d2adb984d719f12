package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/imanubhardwaj/easyappointments/internal/models"
)

// ErrBookingConflict is returned by BookAtomically when the guarded
// re-check inside the insert transaction finds the slot already taken.
var ErrBookingConflict = fmt.Errorf("booking conflict")

// AppointmentRepository provides persistence for appointments and
// unavailability blocks.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = "id, provider_id, service_id, customer_id, start_datetime, end_datetime, is_unavailable, hash, notes, created_at, updated_at"

// ListOverlapping returns a provider's appointments intersecting [from, to),
// skipping the given appointment IDs. Feeds the busy-period builder.
func (r *AppointmentRepository) ListOverlapping(ctx context.Context, providerID string, from, to time.Time, excludeIDs []string) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE provider_id = ? AND start_datetime < ? AND end_datetime > ?", appointmentColumns)
	args := []interface{}{providerID, to, from}

	if len(excludeIDs) > 0 {
		inQuery, inArgs, err := sqlx.In(" AND id NOT IN (?)", excludeIDs)
		if err != nil {
			return nil, fmt.Errorf("expand excluded appointment ids: %w", err)
		}
		query += inQuery
		args = append(args, inArgs...)
	}
	query += " ORDER BY start_datetime ASC"
	query = r.db.Rebind(query)

	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("list overlapping appointments: %w", err)
	}
	return appointments, nil
}

// ListUnavailable returns a provider's unavailability blocks intersecting
// [from, to). Used by the multi-attendant capacity path.
func (r *AppointmentRepository) ListUnavailable(ctx context.Context, providerID string, from, to time.Time) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE provider_id = $1 AND is_unavailable = TRUE AND start_datetime < $2 AND end_datetime > $3 ORDER BY start_datetime ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, to, from); err != nil {
		return nil, fmt.Errorf("list unavailability blocks: %w", err)
	}
	return appointments, nil
}

// CountAttendants returns how many appointments of a service overlap the
// candidate slot, skipping the given appointment IDs. Boundary rule: an
// appointment ending exactly at the slot start, or starting exactly at the
// slot end, does not count.
func (r *AppointmentRepository) CountAttendants(ctx context.Context, serviceID string, slotStart, slotEnd time.Time, excludeIDs []string) (int, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE service_id = ? AND is_unavailable = FALSE AND start_datetime < ? AND end_datetime > ?`
	args := []interface{}{serviceID, slotEnd, slotStart}

	if len(excludeIDs) > 0 {
		inQuery, inArgs, err := sqlx.In(" AND id NOT IN (?)", excludeIDs)
		if err != nil {
			return 0, fmt.Errorf("expand excluded appointment ids: %w", err)
		}
		query += inQuery
		args = append(args, inArgs...)
	}
	query = r.db.Rebind(query)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count attendants: %w", err)
	}
	return count, nil
}

// List returns appointments matching the filter plus the total count.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	conditions := []string{"1 = 1"}
	var args []interface{}

	add := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.ProviderID != "" {
		add("provider_id = $%d", filter.ProviderID)
	}
	if filter.ServiceID != "" {
		add("service_id = $%d", filter.ServiceID)
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if !filter.From.IsZero() {
		add("end_datetime > $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("start_datetime < $%d", filter.To)
	}
	if filter.Unavailable != nil {
		add("is_unavailable = $%d", *filter.Unavailable)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM appointments WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE %s ORDER BY start_datetime ASC LIMIT $%d OFFSET $%d",
		appointmentColumns, where, len(args)-1, len(args))

	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, total, nil
}

// FindByID loads an appointment by id.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindByHash loads an appointment by its management hash.
func (r *AppointmentRepository) FindByHash(ctx context.Context, hash string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE hash = $1", appointmentColumns)
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, hash); err != nil {
		return nil, err
	}
	return &appt, nil
}

// Create stores an appointment or unavailability block without the booking
// guard. Used for blocks and trusted back-office writes.
func (r *AppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	prepareInsert(appt)
	const query = `INSERT INTO appointments (id, provider_id, service_id, customer_id, start_datetime, end_datetime, is_unavailable, hash, notes, created_at, updated_at) VALUES (:id, :provider_id, :service_id, :customer_id, :start_datetime, :end_datetime, :is_unavailable, :hash, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// BookAtomically inserts a customer booking inside a single transaction
// that re-checks the slot first. For single-attendant services any
// overlapping appointment of the provider is a conflict; for services with
// capacity > 1 the conflict is reaching the attendant limit. The check and
// the insert share a transaction so two concurrent commits cannot both
// pass the guard, closing the race the engine-level re-validation only
// narrows.
func (r *AppointmentRepository) BookAtomically(ctx context.Context, appt *models.Appointment, attendantsNumber int) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin booking: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if attendantsNumber > 1 {
		query := `SELECT COUNT(*) FROM appointments WHERE service_id = $1 AND is_unavailable = FALSE AND start_datetime < $2 AND end_datetime > $3`
		args := []interface{}{appt.ServiceID, appt.EndDatetime, appt.StartDatetime}
		if appt.ID != "" {
			// A pre-assigned ID means the row is being re-committed and
			// must not count against its own capacity.
			query += " AND id != $4"
			args = append(args, appt.ID)
		}
		var reserved int
		err = tx.GetContext(ctx, &reserved, query, args...)
		if err != nil {
			return fmt.Errorf("booking attendant re-check: %w", err)
		}
		if reserved >= attendantsNumber {
			err = ErrBookingConflict
			return err
		}
	} else {
		var conflicts int
		err = tx.GetContext(ctx, &conflicts,
			`SELECT COUNT(*) FROM appointments WHERE provider_id = $1 AND start_datetime < $2 AND end_datetime > $3`,
			appt.ProviderID, appt.EndDatetime, appt.StartDatetime)
		if err != nil {
			return fmt.Errorf("booking overlap re-check: %w", err)
		}
		if conflicts > 0 {
			err = ErrBookingConflict
			return err
		}
	}

	prepareInsert(appt)
	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO appointments (id, provider_id, service_id, customer_id, start_datetime, end_datetime, is_unavailable, hash, notes, created_at, updated_at) VALUES (:id, :provider_id, :service_id, :customer_id, :start_datetime, :end_datetime, :is_unavailable, :hash, :notes, :created_at, :updated_at)`,
		appt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// Update modifies an appointment record.
func (r *AppointmentRepository) Update(ctx context.Context, appt *models.Appointment) error {
	appt.UpdatedAt = time.Now().UTC()
	const query = `UPDATE appointments SET provider_id = :provider_id, service_id = :service_id, customer_id = :customer_id, start_datetime = :start_datetime, end_datetime = :end_datetime, is_unavailable = :is_unavailable, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, appt); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// Delete removes an appointment by id.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// ListForDay returns all of a provider's appointments whose local start
// falls inside [from, to). Used by the agenda export.
func (r *AppointmentRepository) ListForDay(ctx context.Context, providerID string, from, to time.Time) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE provider_id = $1 AND start_datetime >= $2 AND start_datetime < $3 ORDER BY start_datetime ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, providerID, from, to); err != nil {
		return nil, fmt.Errorf("list day appointments: %w", err)
	}
	return appointments, nil
}

func prepareInsert(appt *models.Appointment) {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
}
