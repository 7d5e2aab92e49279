package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sgurkov/lesson_booking/internal/model"
)

type TemplateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// Create создаёт запись еженедельного шаблона
func (r *TemplateRepository) Create(ctx context.Context, template *model.WeeklyTemplate) error {
	query := `
		INSERT INTO weekly_templates (instructor_id, day_of_week, start_time, end_time, requires_approval, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		template.InstructorID,
		template.DayOfWeek,
		template.StartTime,
		template.EndTime,
		template.RequiresApproval,
		template.IsActive,
	).Scan(&template.ID, &template.CreatedAt)

	if err != nil {
		return fmt.Errorf("create weekly template: %w", err)
	}

	return nil
}

// GetActiveByInstructorAndDay получает активные шаблоны инструктора на день недели
func (r *TemplateRepository) GetActiveByInstructorAndDay(ctx context.Context, instructorID int64, dayOfWeek int) ([]*model.WeeklyTemplate, error) {
	query := `
		SELECT id, instructor_id, day_of_week, start_time, end_time, requires_approval, is_active, created_at
		FROM weekly_templates
		WHERE instructor_id = $1 AND day_of_week = $2 AND is_active = true
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, instructorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("get weekly templates: %w", err)
	}
	defer rows.Close()

	var templates []*model.WeeklyTemplate
	for rows.Next() {
		var t model.WeeklyTemplate
		err := rows.Scan(
			&t.ID,
			&t.InstructorID,
			&t.DayOfWeek,
			&t.StartTime,
			&t.EndTime,
			&t.RequiresApproval,
			&t.IsActive,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan weekly template: %w", err)
		}
		templates = append(templates, &t)
	}

	return templates, nil
}

// Delete удаляет запись шаблона
func (r *TemplateRepository) Delete(ctx context.Context, id, instructorID int64) error {
	query := `DELETE FROM weekly_templates WHERE id = $1 AND instructor_id = $2`

	result, err := r.pool.Exec(ctx, query, id, instructorID)
	if err != nil {
		return fmt.Errorf("delete weekly template: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("weekly template not found")
	}

	return nil
}
