package model

import "time"

// Course групповой курс инструктора
type Course struct {
	ID           int64     `json:"id"`
	InstructorID int64     `json:"instructor_id"`
	Title        string    `json:"title"`
	MaxStudents  int       `json:"max_students"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// CourseSession запланированное занятие курса, блокирует время инструктора
type CourseSession struct {
	ID        int64     `json:"id"`
	CourseID  int64     `json:"course_id"`
	StartTime time.Time `json:"start_time"` // UTC
	EndTime   time.Time `json:"end_time"`   // UTC
	CreatedAt time.Time `json:"created_at"`
}
