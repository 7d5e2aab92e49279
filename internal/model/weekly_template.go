package model

import "time"

// WeeklyTemplate повторяющееся еженедельное окно доступности инструктора
type WeeklyTemplate struct {
	ID               int64     `json:"id"`
	InstructorID     int64     `json:"instructor_id"`
	DayOfWeek        int       `json:"day_of_week"` // 0 = Sunday, 6 = Saturday
	StartTime        string    `json:"start_time"`  // локальное время "HH:MM"
	EndTime          string    `json:"end_time"`    // локальное время "HH:MM"
	RequiresApproval bool      `json:"requires_approval"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}
