package calendar

import (
	"context"
	"time"

	"github.com/sgurkov/lesson_booking/internal/model"
)

// Disconnected бэкенд-заглушка: используется когда интеграция с внешним
// календарём глобально выключена. Чтение отвечает "занятости нет",
// запись честно сообщает что календаря нет.
type Disconnected struct{}

func NewDisconnected() *Disconnected {
	return &Disconnected{}
}

func (d *Disconnected) GetBusyIntervals(ctx context.Context, instructor *model.Instructor, from, to time.Time) ([]BusyInterval, error) {
	return nil, nil
}

func (d *Disconnected) CheckConflict(ctx context.Context, instructor *model.Instructor, start, end time.Time) (ConflictCheck, error) {
	return ConflictCheck{}, nil
}

func (d *Disconnected) CreateEvent(ctx context.Context, instructor *model.Instructor, event Event) (string, error) {
	return "", ErrNotConnected
}

func (d *Disconnected) UpdateEvent(ctx context.Context, instructor *model.Instructor, eventID string, event Event) error {
	return ErrNotConnected
}

func (d *Disconnected) DeleteEvent(ctx context.Context, instructor *model.Instructor, eventID string) error {
	return ErrNotConnected
}
