package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/sgurkov/lesson_booking/internal/repository/base"
)

type InstructorRepository struct {
	pool *pgxpool.Pool
}

func NewInstructorRepository(pool *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{pool: pool}
}

const instructorColumns = `id, name, timezone, telegram_chat_id, calendar_blocking_enabled,
		calendar_connected, google_calendar_id, google_token, created_at, updated_at`

// Create создаёт инструктора
func (r *InstructorRepository) Create(ctx context.Context, instructor *model.Instructor) error {
	query := `
		INSERT INTO instructors (name, timezone, telegram_chat_id, calendar_blocking_enabled, calendar_connected, google_calendar_id, google_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		instructor.Name,
		instructor.Timezone,
		instructor.TelegramChatID,
		instructor.CalendarBlockingEnabled,
		instructor.CalendarConnected,
		instructor.GoogleCalendarID,
		instructor.GoogleToken,
	).Scan(&instructor.ID, &instructor.CreatedAt)

	if err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}

	return nil
}

// GetByID получает инструктора по ID
func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*model.Instructor, error) {
	query := `SELECT ` + instructorColumns + ` FROM instructors WHERE id = $1`

	var instructor model.Instructor
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&instructor.ID,
		&instructor.Name,
		&instructor.Timezone,
		&instructor.TelegramChatID,
		&instructor.CalendarBlockingEnabled,
		&instructor.CalendarConnected,
		&instructor.GoogleCalendarID,
		&instructor.GoogleToken,
		&instructor.CreatedAt,
		&instructor.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get instructor by id: %w", err)
	}

	return &instructor, nil
}

// UpdateCalendarConnection обновляет состояние подключения внешнего календаря
func (r *InstructorRepository) UpdateCalendarConnection(ctx context.Context, id int64, connected bool, calendarID string, token *string) error {
	query := `
		UPDATE instructors
		SET calendar_connected = $1, google_calendar_id = $2, google_token = $3, updated_at = now()
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, connected, calendarID, token, id)
	if err != nil {
		return fmt.Errorf("update calendar connection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("instructor not found")
	}

	return nil
}
