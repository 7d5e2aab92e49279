package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sgurkov/lesson_booking/internal/model"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// CreateSession добавляет занятие курса
func (r *CourseRepository) CreateSession(ctx context.Context, session *model.CourseSession) error {
	query := `
		INSERT INTO course_sessions (course_id, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, session.CourseID, session.StartTime, session.EndTime).
		Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		return fmt.Errorf("create course session: %w", err)
	}

	return nil
}

// GetSessionsByInstructorInRange получает занятия всех курсов инструктора,
// пересекающие [from, to)
func (r *CourseRepository) GetSessionsByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.CourseSession, error) {
	query := `
		SELECT cs.id, cs.course_id, cs.start_time, cs.end_time, cs.created_at
		FROM course_sessions cs
		JOIN courses c ON c.id = cs.course_id
		WHERE c.instructor_id = $1
		  AND cs.start_time < $3
		  AND cs.end_time > $2
		ORDER BY cs.start_time
	`

	rows, err := r.pool.Query(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get course sessions in range: %w", err)
	}
	defer rows.Close()

	var sessions []*model.CourseSession
	for rows.Next() {
		var session model.CourseSession
		err := rows.Scan(
			&session.ID,
			&session.CourseID,
			&session.StartTime,
			&session.EndTime,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan course session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, nil
}
