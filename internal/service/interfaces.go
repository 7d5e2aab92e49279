package service

import (
	"context"
	"time"

	"github.com/sgurkov/lesson_booking/internal/model"
)

// Интерфейсы хранилища объявлены на стороне потребителя:
// сервисам нужно ровно это, реализуют их pgx-репозитории.

type InstructorStore interface {
	GetByID(ctx context.Context, id int64) (*model.Instructor, error)
}

type AppointmentTypeStore interface {
	GetByID(ctx context.Context, id int64) (*model.AppointmentType, error)
	GetActiveByInstructorID(ctx context.Context, instructorID int64) ([]*model.AppointmentType, error)
}

type TemplateStore interface {
	GetActiveByInstructorAndDay(ctx context.Context, instructorID int64, dayOfWeek int) ([]*model.WeeklyTemplate, error)
}

type OverrideStore interface {
	GetByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.AvailabilityOverride, error)
}

type AppointmentStore interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)
	GetActiveByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Appointment, error)
	HasConflicting(ctx context.Context, instructorID int64, start, end time.Time, excludeID *int64) (bool, error)
	GetPendingByInstructorID(ctx context.Context, instructorID int64) ([]*model.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error
	UpdateTimes(ctx context.Context, id int64, start, end time.Time) error
	Cancel(ctx context.Context, id int64, reason string) error
	SetExternalEventID(ctx context.Context, id int64, eventID string) error
	CompleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type CourseStore interface {
	GetSessionsByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.CourseSession, error)
}
