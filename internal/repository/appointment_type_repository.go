package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/sgurkov/lesson_booking/internal/repository/base"
)

type AppointmentTypeRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentTypeRepository(pool *pgxpool.Pool) *AppointmentTypeRepository {
	return &AppointmentTypeRepository{pool: pool}
}

const appointmentTypeColumns = `id, instructor_id, title, description, duration_minutes,
		minimum_duration_hours, duration_increment_minutes, price, buffer_before_minutes,
		buffer_after_minutes, max_party_size, requires_approval, is_active, created_at`

func scanAppointmentType(row pgx.Row) (*model.AppointmentType, error) {
	var t model.AppointmentType
	err := row.Scan(
		&t.ID,
		&t.InstructorID,
		&t.Title,
		&t.Description,
		&t.DurationMinutes,
		&t.MinimumDurationHours,
		&t.DurationIncrementMinutes,
		&t.Price,
		&t.BufferBeforeMinutes,
		&t.BufferAfterMinutes,
		&t.MaxPartySize,
		&t.RequiresApproval,
		&t.IsActive,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create создаёт новый тип занятия
func (r *AppointmentTypeRepository) Create(ctx context.Context, t *model.AppointmentType) error {
	query := `
		INSERT INTO appointment_types (instructor_id, title, description, duration_minutes, minimum_duration_hours,
			duration_increment_minutes, price, buffer_before_minutes, buffer_after_minutes, max_party_size,
			requires_approval, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		t.InstructorID,
		t.Title,
		t.Description,
		t.DurationMinutes,
		t.MinimumDurationHours,
		t.DurationIncrementMinutes,
		t.Price,
		t.BufferBeforeMinutes,
		t.BufferAfterMinutes,
		t.MaxPartySize,
		t.RequiresApproval,
		t.IsActive,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		return fmt.Errorf("create appointment type: %w", err)
	}

	return nil
}

// GetByID получает тип занятия по ID
func (r *AppointmentTypeRepository) GetByID(ctx context.Context, id int64) (*model.AppointmentType, error) {
	query := `SELECT ` + appointmentTypeColumns + ` FROM appointment_types WHERE id = $1`

	t, err := scanAppointmentType(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment type by id: %w", err)
	}

	return t, nil
}

// GetActiveByInstructorID получает все активные типы занятий инструктора
func (r *AppointmentTypeRepository) GetActiveByInstructorID(ctx context.Context, instructorID int64) ([]*model.AppointmentType, error) {
	query := `
		SELECT ` + appointmentTypeColumns + `
		FROM appointment_types
		WHERE instructor_id = $1 AND is_active = true
		ORDER BY title
	`

	rows, err := r.pool.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get appointment types by instructor: %w", err)
	}
	defer rows.Close()

	var types []*model.AppointmentType
	for rows.Next() {
		t, err := scanAppointmentType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment type: %w", err)
		}
		types = append(types, t)
	}

	return types, nil
}

// SetActive переключает активность типа (мягкое отключение вместо удаления)
func (r *AppointmentTypeRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE appointment_types SET is_active = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("set appointment type active: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment type not found")
	}

	return nil
}
