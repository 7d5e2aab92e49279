package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sgurkov/lesson_booking/internal/calendar"
	"github.com/sgurkov/lesson_booking/internal/metrics"
	"github.com/sgurkov/lesson_booking/internal/model"
	"go.uber.org/zap"
)

// ConflictService собирает занятость инструктора из всех источников
// в один список для проверки пересечений
type ConflictService struct {
	appointmentRepo AppointmentStore
	courseRepo      CourseStore
	calendar        calendar.Service
	logger          *zap.Logger
}

func NewConflictService(
	appointmentRepo AppointmentStore,
	courseRepo CourseStore,
	calendarService calendar.Service,
	logger *zap.Logger,
) *ConflictService {
	return &ConflictService{
		appointmentRepo: appointmentRepo,
		courseRepo:      courseRepo,
		calendar:        calendarService,
		logger:          logger,
	}
}

// Collect возвращает все занятые интервалы инструктора в [from, to).
// Дубликаты между источниками не страшны - для проверки пересечения
// лишний интервал ничего не меняет.
//
// Сбой внешнего календаря проглатывается: просмотр доступности деградирует
// до "внешняя занятость неизвестна", а не падает целиком.
func (s *ConflictService) Collect(ctx context.Context, instructor *model.Instructor, from, to time.Time) ([]model.Conflict, error) {
	var conflicts []model.Conflict

	appointments, err := s.appointmentRepo.GetActiveByInstructorInRange(ctx, instructor.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("collect appointments: %w", err)
	}

	for _, a := range appointments {
		conflicts = append(conflicts, model.Conflict{
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
			Source:    model.ConflictSourceAppointment,
		})
	}

	sessions, err := s.courseRepo.GetSessionsByInstructorInRange(ctx, instructor.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("collect course sessions: %w", err)
	}

	for _, cs := range sessions {
		conflicts = append(conflicts, model.Conflict{
			StartTime: cs.StartTime,
			EndTime:   cs.EndTime,
			Source:    model.ConflictSourceCourse,
		})
	}

	if instructor.UsesCalendarBlocking() {
		busy, err := s.calendar.GetBusyIntervals(ctx, instructor, from, to)
		if err != nil {
			metrics.IncCalendarError()
			s.logger.Warn("External calendar lookup failed, continuing without it",
				zap.Int64("instructor_id", instructor.ID),
				zap.Error(err))
		} else {
			for _, b := range busy {
				conflicts = append(conflicts, model.Conflict{
					StartTime: b.Start,
					EndTime:   b.End,
					Source:    model.ConflictSourceExternal,
					Label:     b.Label,
				})
			}
		}
	}

	return conflicts, nil
}
