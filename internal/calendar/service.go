package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/sgurkov/lesson_booking/internal/model"
)

// ErrNotConnected инструктор не подключил внешний календарь.
// Для read-методов это штатная ситуация (пустой результат), ошибка
// возвращается только там, где без календаря операция не имеет смысла.
var ErrNotConnected = errors.New("instructor calendar is not connected")

// BusyInterval занятый интервал из внешнего календаря, UTC
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label,omitempty"`
}

// ConflictCheck результат точечной проверки пересечения
type ConflictCheck struct {
	HasConflict      bool
	ConflictingEvent string // название события, если календарь его отдал
}

// Event зеркальная запись бронирования во внешнем календаре
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// Service интерфейс внешнего календаря. Бэкенды взаимозаменяемы:
// Google-календарь для подключённых инструкторов, Disconnected для остальных.
type Service interface {
	// GetBusyIntervals возвращает занятость инструктора в [from, to).
	// Неподключённый инструктор - пустой список без ошибки.
	GetBusyIntervals(ctx context.Context, instructor *model.Instructor, from, to time.Time) ([]BusyInterval, error)

	// CheckConflict свежая точечная проверка пересечения с [start, end).
	// Неподключённый инструктор - нет конфликта, без ошибки.
	CheckConflict(ctx context.Context, instructor *model.Instructor, start, end time.Time) (ConflictCheck, error)

	// CreateEvent зеркалит бронирование, возвращает id события
	CreateEvent(ctx context.Context, instructor *model.Instructor, event Event) (string, error)

	// UpdateEvent обновляет ранее созданное событие
	UpdateEvent(ctx context.Context, instructor *model.Instructor, eventID string, event Event) error

	// DeleteEvent удаляет ранее созданное событие
	DeleteEvent(ctx context.Context, instructor *model.Instructor, eventID string) error
}
