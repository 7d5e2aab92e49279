package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/sgurkov/lesson_booking/internal/repository/base"
)

// ErrOverlappingAppointment возвращается когда вставка упирается в exclusion
// constraint: параллельная бронь успела занять пересекающийся интервал.
var ErrOverlappingAppointment = errors.New("appointment overlaps an existing active appointment")

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `id, instructor_id, student_id, appointment_type_id, start_time, end_time,
		status, party_size, payment_status, payment_amount, comment, cancellation_reason,
		external_event_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.InstructorID,
		&a.StudentID,
		&a.AppointmentTypeID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.PartySize,
		&a.PaymentStatus,
		&a.PaymentAmount,
		&a.Comment,
		&a.CancellationReason,
		&a.ExternalEventID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create вставляет запись в serializable транзакции.
// Последняя линия обороны от гонки "проверили-вставили": пересечение активных
// интервалов одного инструктора дополнительно запрещено exclusion constraint,
// его нарушение превращается в ErrOverlappingAppointment.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO appointments (instructor_id, student_id, appointment_type_id, start_time, end_time,
			status, party_size, payment_status, payment_amount, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx, query,
		appointment.InstructorID,
		appointment.StudentID,
		appointment.AppointmentTypeID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.PartySize,
		appointment.PaymentStatus,
		appointment.PaymentAmount,
		appointment.Comment,
	).Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)

	if err != nil {
		if base.IsExclusionViolation(err) {
			return ErrOverlappingAppointment
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if base.IsExclusionViolation(err) {
			return ErrOverlappingAppointment
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appointment, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appointment, nil
}

// GetActiveByInstructorInRange получает pending и confirmed записи инструктора,
// чей интервал пересекает [from, to)
func (r *AppointmentRepository) GetActiveByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE instructor_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get appointments in range: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, appointment)
	}

	return appointments, nil
}

// HasConflicting проверяет есть ли активная запись инструктора,
// пересекающая [start, end). excludeID исключает перебронируемую запись.
func (r *AppointmentRepository) HasConflicting(ctx context.Context, instructorID int64, start, end time.Time, excludeID *int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE instructor_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_time < $3
			  AND end_time > $2
			  AND ($4::bigint IS NULL OR id <> $4)
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, instructorID, start, end, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check conflicting appointment: %w", err)
	}

	return exists, nil
}

// GetPendingByInstructorID получает записи инструктора, ожидающие одобрения
func (r *AppointmentRepository) GetPendingByInstructorID(ctx context.Context, instructorID int64) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE instructor_id = $1 AND status = 'pending'
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get pending appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, appointment)
	}

	return appointments, nil
}

// UpdateStatus обновляет статус записи
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $1, updated_at = now() WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

// Cancel помечает запись отменённой с указанием причины
func (r *AppointmentRepository) Cancel(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE appointments
		SET status = 'cancelled', cancellation_reason = $1, updated_at = now()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, reason, id)
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

// UpdateTimes переносит запись на новый интервал. Пересечение с другой
// активной записью ловится exclusion constraint так же, как при вставке.
func (r *AppointmentRepository) UpdateTimes(ctx context.Context, id int64, start, end time.Time) error {
	query := `UPDATE appointments SET start_time = $1, end_time = $2, updated_at = now() WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, start, end, id)
	if err != nil {
		if base.IsExclusionViolation(err) {
			return ErrOverlappingAppointment
		}
		return fmt.Errorf("update appointment times: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

// SetExternalEventID сохраняет id зеркальной записи во внешнем календаре
func (r *AppointmentRepository) SetExternalEventID(ctx context.Context, id int64, eventID string) error {
	query := `UPDATE appointments SET external_event_id = $1, updated_at = now() WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, eventID, id)
	if err != nil {
		return fmt.Errorf("set external event id: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

// CompleteBefore переводит подтверждённые записи, закончившиеся до cutoff,
// в статус completed. Возвращает количество затронутых записей.
func (r *AppointmentRepository) CompleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE appointments
		SET status = 'completed', updated_at = now()
		WHERE status = 'confirmed' AND end_time <= $1
	`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("complete past appointments: %w", err)
	}

	return result.RowsAffected(), nil
}
