package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sgurkov/lesson_booking/internal/model"
)

type OverrideRepository struct {
	pool *pgxpool.Pool
}

func NewOverrideRepository(pool *pgxpool.Pool) *OverrideRepository {
	return &OverrideRepository{pool: pool}
}

// Create создаёт переопределение доступности
func (r *OverrideRepository) Create(ctx context.Context, override *model.AvailabilityOverride) error {
	query := `
		INSERT INTO availability_overrides (group_id, instructor_id, start_date, end_date, start_time, end_time, is_available, requires_approval)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		override.GroupID,
		override.InstructorID,
		override.StartDate,
		override.EndDate,
		override.StartTime,
		override.EndTime,
		override.IsAvailable,
		override.RequiresApproval,
	).Scan(&override.ID, &override.CreatedAt)

	if err != nil {
		return fmt.Errorf("create availability override: %w", err)
	}

	return nil
}

// GetByInstructorInRange получает переопределения, чей диапазон дат пересекает [from, to].
// from и to - календарные даты (полуночи): start_date/end_date - DATE-колонки,
// момент внутри дня не пройдёт сравнение end_date >= from.
// Порядок (created_at, id) фиксирован, чтобы наложение переопределений было воспроизводимым.
func (r *OverrideRepository) GetByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.AvailabilityOverride, error) {
	query := `
		SELECT id, group_id, instructor_id, start_date, end_date, start_time, end_time, is_available, requires_approval, created_at
		FROM availability_overrides
		WHERE instructor_id = $1
		  AND start_date <= $3
		  AND end_date >= $2
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get overrides in range: %w", err)
	}
	defer rows.Close()

	var overrides []*model.AvailabilityOverride
	for rows.Next() {
		var o model.AvailabilityOverride
		err := rows.Scan(
			&o.ID,
			&o.GroupID,
			&o.InstructorID,
			&o.StartDate,
			&o.EndDate,
			&o.StartTime,
			&o.EndTime,
			&o.IsAvailable,
			&o.RequiresApproval,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		overrides = append(overrides, &o)
	}

	return overrides, nil
}

// DeleteGroup удаляет все переопределения одной группы (многодневный диапазон)
func (r *OverrideRepository) DeleteGroup(ctx context.Context, instructorID int64, groupID string) error {
	query := `DELETE FROM availability_overrides WHERE instructor_id = $1 AND group_id = $2`

	result, err := r.pool.Exec(ctx, query, instructorID, groupID)
	if err != nil {
		return fmt.Errorf("delete override group: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("override group not found")
	}

	return nil
}
