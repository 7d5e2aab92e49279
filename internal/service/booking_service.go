package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sgurkov/lesson_booking/internal/calendar"
	"github.com/sgurkov/lesson_booking/internal/metrics"
	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/sgurkov/lesson_booking/internal/repository"
	"github.com/sgurkov/lesson_booking/internal/timeutil"
	"go.uber.org/zap"
)

// ReasonCode класс отказа валидации, по нему вызывающий строит сообщение
type ReasonCode string

const (
	ReasonNotFound        ReasonCode = "not_found"
	ReasonPolicyViolation ReasonCode = "policy_violation"
	ReasonConflict        ReasonCode = "conflict"
	ReasonOutOfWindow     ReasonCode = "out_of_window"
)

// CheckResult результат валидации. Отказ - это значение, а не ошибка:
// ошибки оставлены сбоям хранилища.
type CheckResult struct {
	Valid  bool       `json:"valid"`
	Code   ReasonCode `json:"code,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

func rejected(code ReasonCode, reason string) CheckResult {
	return CheckResult{Valid: false, Code: code, Reason: reason}
}

// BookRequest запрос на бронирование. Платёжные поля приходят уже
// проверенными выше по потоку - движок платежами не занимается.
type BookRequest struct {
	InstructorID      int64
	StudentID         int64
	AppointmentTypeID int64
	StartTime         time.Time
	EndTime           time.Time
	PartySize         int
	PaymentStatus     string
	PaymentAmount     int
	Comment           string
}

// mirrorTimeout предел на вызовы внешнего календаря при коммите
const mirrorTimeout = 10 * time.Second

// BookingService валидирует и проводит бронирования
type BookingService struct {
	instructorRepo  InstructorStore
	typeRepo        AppointmentTypeStore
	appointmentRepo AppointmentStore
	courseRepo      CourseStore
	availability    *AvailabilityService
	calendar        calendar.Service
	notifier        Notifier
	logger          *zap.Logger
}

// Notifier см. пакет notify; продублирован здесь узким интерфейсом
// чтобы сервис не зависел от конкретной доставки
type Notifier interface {
	BookingCreated(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, appointmentType *model.AppointmentType)
	BookingApproved(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment)
	BookingRejected(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment)
	BookingCancelled(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, reason string)
}

func NewBookingService(
	instructorRepo InstructorStore,
	typeRepo AppointmentTypeStore,
	appointmentRepo AppointmentStore,
	courseRepo CourseStore,
	availability *AvailabilityService,
	calendarService calendar.Service,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		instructorRepo:  instructorRepo,
		typeRepo:        typeRepo,
		appointmentRepo: appointmentRepo,
		courseRepo:      courseRepo,
		availability:    availability,
		calendar:        calendarService,
		notifier:        notifier,
		logger:          logger,
	}
}

// Validate прогоняет запрошенный интервал через все проверки.
// Первая провалившаяся проверка останавливает остальные.
// excludeAppointmentID исключает из проверки пересечений перебронируемую запись.
func (s *BookingService) Validate(ctx context.Context, instructorID, appointmentTypeID int64, start, end time.Time, excludeAppointmentID *int64) (CheckResult, error) {
	// 1. Тип занятия существует, активен и принадлежит инструктору
	appointmentType, err := s.typeRepo.GetByID(ctx, appointmentTypeID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("get appointment type: %w", err)
	}
	if appointmentType == nil || !appointmentType.IsActive || appointmentType.InstructorID != instructorID {
		return rejected(ReasonNotFound, "appointment type not found"), nil
	}

	instructor, err := s.instructorRepo.GetByID(ctx, instructorID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil {
		return rejected(ReasonNotFound, "instructor not found"), nil
	}

	// 2. Политика длительности
	if !end.After(start) {
		return rejected(ReasonPolicyViolation, "end time must be after start time"), nil
	}

	minutes := int(end.Sub(start) / time.Minute)
	if !appointmentType.AllowsDuration(minutes) {
		return rejected(ReasonPolicyViolation, durationPolicyMessage(appointmentType)), nil
	}

	// 3. Пересечение с активными записями; буферы типа расширяют
	// проверяемый интервал, при нулевых буферах брони встык проходят
	checkStart := start.Add(-time.Duration(appointmentType.BufferBeforeMinutes) * time.Minute)
	checkEnd := end.Add(time.Duration(appointmentType.BufferAfterMinutes) * time.Minute)

	conflicting, err := s.appointmentRepo.HasConflicting(ctx, instructorID, checkStart, checkEnd, excludeAppointmentID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("check conflicting appointments: %w", err)
	}
	if conflicting {
		return rejected(ReasonConflict, "time overlaps an existing appointment"), nil
	}

	// 4. Интервал целиком помещается хотя бы в один блок доступности
	// локального дня; частичное попадание отклоняется, а не обрезается
	loc, err := instructor.Location()
	if err != nil {
		return CheckResult{}, fmt.Errorf("load instructor timezone: %w", err)
	}

	fits, err := s.fitsAvailability(ctx, instructorID, start, end, loc)
	if err != nil {
		return CheckResult{}, err
	}
	if !fits {
		return rejected(ReasonOutOfWindow, "requested time is outside instructor availability"), nil
	}

	// 5. Пересечение с занятиями групповых курсов
	sessions, err := s.courseRepo.GetSessionsByInstructorInRange(ctx, instructorID, start, end)
	if err != nil {
		return CheckResult{}, fmt.Errorf("get course sessions: %w", err)
	}
	for _, session := range sessions {
		if timeutil.Overlaps(start, end, session.StartTime, session.EndTime) {
			return rejected(ReasonConflict, "time overlaps a scheduled course session"), nil
		}
	}

	// 6. Свежая проверка внешнего календаря. Сбой календаря не блокирует
	// бронирование (fail-open), как и при сборе конфликтов на просмотре
	if instructor.UsesCalendarBlocking() {
		check, err := s.calendar.CheckConflict(ctx, instructor, start, end)
		if err != nil {
			metrics.IncCalendarError()
			s.logger.Warn("Commit-time calendar check failed, proceeding fail-open",
				zap.Int64("instructor_id", instructorID),
				zap.Error(err))
		} else if check.HasConflict {
			reason := "time is blocked by an external calendar event"
			if check.ConflictingEvent != "" {
				reason = fmt.Sprintf("time is blocked by external calendar event %q", check.ConflictingEvent)
			}
			return rejected(ReasonConflict, reason), nil
		}
	}

	return CheckResult{Valid: true}, nil
}

// fitsAvailability проверяет что [start, end) лежит внутри одного блока
// доступности локального дня начала
func (s *BookingService) fitsAvailability(ctx context.Context, instructorID int64, start, end time.Time, loc *time.Location) (bool, error) {
	localDay := start.In(loc)

	blocksByDay, err := s.availability.ResolveBlocks(ctx, instructorID, localDay, localDay, loc)
	if err != nil {
		return false, fmt.Errorf("resolve availability: %w", err)
	}

	for _, block := range blocksByDay[localDay.Format("2006-01-02")] {
		blockStart, err := timeutil.LocalWallClockToUTC(localDay, block.StartTime, loc)
		if err != nil {
			return false, err
		}
		blockEnd, err := timeutil.LocalWallClockToUTC(localDay, block.EndTime, loc)
		if err != nil {
			return false, err
		}

		if !start.Before(blockStart) && !end.After(blockEnd) {
			return true, nil
		}
	}

	return false, nil
}

func durationPolicyMessage(t *model.AppointmentType) string {
	if t.IsFixedDuration() {
		return fmt.Sprintf("duration must be exactly %d minutes", *t.DurationMinutes)
	}
	if t.MinimumDurationHours != nil && t.DurationIncrementMinutes != nil {
		return fmt.Sprintf("duration must be at least %d hours in increments of %d minutes",
			*t.MinimumDurationHours, *t.DurationIncrementMinutes)
	}
	return "requested duration is not allowed for this appointment type"
}

// Book валидирует и проводит бронирование. Начальный статус берётся из
// политики типа: requires_approval уводит запись в pending.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*model.Appointment, CheckResult, error) {
	result, err := s.Validate(ctx, req.InstructorID, req.AppointmentTypeID, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, CheckResult{}, err
	}
	if !result.Valid {
		metrics.IncValidationRejected(string(result.Code))
		return nil, result, nil
	}

	appointmentType, err := s.typeRepo.GetByID(ctx, req.AppointmentTypeID)
	if err != nil {
		return nil, CheckResult{}, fmt.Errorf("get appointment type: %w", err)
	}
	// Тип мог пропасть между валидацией и повторным чтением
	if appointmentType == nil {
		result := rejected(ReasonNotFound, "appointment type not found")
		metrics.IncValidationRejected(string(result.Code))
		return nil, result, nil
	}

	partySize := req.PartySize
	if partySize <= 0 {
		partySize = 1
	}
	if appointmentType.MaxPartySize > 0 && partySize > appointmentType.MaxPartySize {
		result := rejected(ReasonPolicyViolation,
			fmt.Sprintf("party size exceeds the maximum of %d", appointmentType.MaxPartySize))
		metrics.IncValidationRejected(string(result.Code))
		return nil, result, nil
	}

	status := model.AppointmentStatusConfirmed
	if appointmentType.RequiresApproval {
		status = model.AppointmentStatusPending
	}

	appointment := &model.Appointment{
		InstructorID:      req.InstructorID,
		StudentID:         req.StudentID,
		AppointmentTypeID: req.AppointmentTypeID,
		StartTime:         req.StartTime.UTC(),
		EndTime:           req.EndTime.UTC(),
		Status:            status,
		PartySize:         partySize,
		PaymentStatus:     req.PaymentStatus,
		PaymentAmount:     req.PaymentAmount,
		Comment:           req.Comment,
	}

	err = s.appointmentRepo.Create(ctx, appointment)
	if err != nil {
		// Конкурирующая бронь успела первой - для вызывающего это конфликт,
		// а не сбой сервиса
		if errors.Is(err, repository.ErrOverlappingAppointment) {
			result := rejected(ReasonConflict, "time overlaps an existing appointment")
			metrics.IncValidationRejected(string(result.Code))
			return nil, result, nil
		}
		return nil, CheckResult{}, fmt.Errorf("create appointment: %w", err)
	}

	metrics.IncBookingCreated(string(status))

	s.logger.Info("Appointment booked",
		zap.Int64("appointment_id", appointment.ID),
		zap.Int64("instructor_id", req.InstructorID),
		zap.Int64("student_id", req.StudentID),
		zap.Time("start_time", appointment.StartTime),
		zap.String("status", string(status)),
	)

	instructor, err := s.instructorRepo.GetByID(ctx, req.InstructorID)
	if err != nil || instructor == nil {
		// Бронь уже проведена и авторитетна; без инструктора просто
		// нечем зеркалить и некого уведомлять
		s.logger.Warn("Instructor lookup after booking failed",
			zap.Int64("instructor_id", req.InstructorID),
			zap.Error(err))
		return appointment, CheckResult{Valid: true}, nil
	}

	s.mirrorToCalendar(ctx, instructor, appointment, appointmentType)
	s.notifier.BookingCreated(ctx, instructor, appointment, appointmentType)

	appointment.AppointmentType = appointmentType
	return appointment, CheckResult{Valid: true}, nil
}

// mirrorToCalendar зеркалит бронь во внешний календарь. Best-effort:
// ограничено таймаутом, любой сбой логируется и не трогает бронь.
func (s *BookingService) mirrorToCalendar(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, appointmentType *model.AppointmentType) {
	if !instructor.CalendarConnected {
		return
	}

	mirrorCtx, cancel := context.WithTimeout(ctx, mirrorTimeout)
	defer cancel()

	eventID, err := s.calendar.CreateEvent(mirrorCtx, instructor, calendar.Event{
		Title:       appointmentType.Title,
		Description: fmt.Sprintf("Booking #%d", appointment.ID),
		Start:       appointment.StartTime,
		End:         appointment.EndTime,
	})

	if err != nil {
		if !errors.Is(err, calendar.ErrNotConnected) {
			metrics.IncCalendarError()
			s.logger.Warn("Calendar mirror failed, booking stands",
				zap.Int64("appointment_id", appointment.ID),
				zap.Error(err))
		}
		return
	}

	if err := s.appointmentRepo.SetExternalEventID(ctx, appointment.ID, eventID); err != nil {
		s.logger.Warn("Failed to store external event id",
			zap.Int64("appointment_id", appointment.ID),
			zap.String("event_id", eventID),
			zap.Error(err))
		return
	}

	appointment.ExternalEventID = &eventID
}

// dropCalendarMirror удаляет зеркальное событие после отмены/отклонения
func (s *BookingService) dropCalendarMirror(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment) {
	if appointment.ExternalEventID == nil {
		return
	}

	mirrorCtx, cancel := context.WithTimeout(ctx, mirrorTimeout)
	defer cancel()

	if err := s.calendar.DeleteEvent(mirrorCtx, instructor, *appointment.ExternalEventID); err != nil {
		if !errors.Is(err, calendar.ErrNotConnected) {
			metrics.IncCalendarError()
			s.logger.Warn("Failed to delete mirrored calendar event",
				zap.Int64("appointment_id", appointment.ID),
				zap.Error(err))
		}
	}
}

// Reschedule переносит активную запись на новый интервал. Перенести может
// студент или инструктор. Старый интервал записи исключается из проверки
// пересечений, иначе запись конфликтовала бы сама с собой.
func (s *BookingService) Reschedule(ctx context.Context, appointmentID, userID int64, newStart, newEnd time.Time) (CheckResult, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("get appointment: %w", err)
	}

	if appointment == nil {
		return rejected(ReasonNotFound, "appointment not found"), nil
	}

	if appointment.StudentID != userID && appointment.InstructorID != userID {
		return CheckResult{}, fmt.Errorf("no permission to reschedule this appointment")
	}

	if !appointment.IsActive() {
		return rejected(ReasonPolicyViolation, "appointment is not active"), nil
	}

	result, err := s.Validate(ctx, appointment.InstructorID, appointment.AppointmentTypeID, newStart, newEnd, &appointment.ID)
	if err != nil {
		return CheckResult{}, err
	}
	if !result.Valid {
		metrics.IncValidationRejected(string(result.Code))
		return result, nil
	}

	if err := s.appointmentRepo.UpdateTimes(ctx, appointmentID, newStart.UTC(), newEnd.UTC()); err != nil {
		if errors.Is(err, repository.ErrOverlappingAppointment) {
			result := rejected(ReasonConflict, "time overlaps an existing appointment")
			metrics.IncValidationRejected(string(result.Code))
			return result, nil
		}
		return CheckResult{}, fmt.Errorf("update appointment times: %w", err)
	}

	s.logger.Info("Appointment rescheduled",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("user_id", userID),
		zap.Time("new_start", newStart),
	)

	appointment.StartTime = newStart.UTC()
	appointment.EndTime = newEnd.UTC()

	if instructor, err := s.instructorRepo.GetByID(ctx, appointment.InstructorID); err == nil && instructor != nil {
		s.updateCalendarMirror(ctx, instructor, appointment)
	}

	return CheckResult{Valid: true}, nil
}

// updateCalendarMirror двигает зеркальное событие вслед за переносом записи
func (s *BookingService) updateCalendarMirror(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment) {
	if appointment.ExternalEventID == nil {
		return
	}

	appointmentType, err := s.typeRepo.GetByID(ctx, appointment.AppointmentTypeID)
	if err != nil || appointmentType == nil {
		return
	}

	mirrorCtx, cancel := context.WithTimeout(ctx, mirrorTimeout)
	defer cancel()

	err = s.calendar.UpdateEvent(mirrorCtx, instructor, *appointment.ExternalEventID, calendar.Event{
		Title:       appointmentType.Title,
		Description: fmt.Sprintf("Booking #%d", appointment.ID),
		Start:       appointment.StartTime,
		End:         appointment.EndTime,
	})

	if err != nil && !errors.Is(err, calendar.ErrNotConnected) {
		metrics.IncCalendarError()
		s.logger.Warn("Failed to move mirrored calendar event",
			zap.Int64("appointment_id", appointment.ID),
			zap.Error(err))
	}
}

// Approve одобряет запись, ожидающую подтверждения
func (s *BookingService) Approve(ctx context.Context, appointmentID, instructorID int64) error {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("get appointment: %w", err)
	}

	if appointment == nil {
		return fmt.Errorf("appointment not found")
	}

	if appointment.InstructorID != instructorID {
		return fmt.Errorf("no permission to approve this appointment")
	}

	if appointment.Status != model.AppointmentStatusPending {
		return fmt.Errorf("appointment is not pending")
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, model.AppointmentStatusConfirmed); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	metrics.IncBookingDecision("approved")

	s.logger.Info("Appointment approved",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("instructor_id", instructorID),
	)

	if instructor, err := s.instructorRepo.GetByID(ctx, instructorID); err == nil && instructor != nil {
		appointment.Status = model.AppointmentStatusConfirmed
		s.notifier.BookingApproved(ctx, instructor, appointment)
	}

	return nil
}

// Reject отклоняет запись, ожидающую подтверждения
func (s *BookingService) Reject(ctx context.Context, appointmentID, instructorID int64) error {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("get appointment: %w", err)
	}

	if appointment == nil {
		return fmt.Errorf("appointment not found")
	}

	if appointment.InstructorID != instructorID {
		return fmt.Errorf("no permission to reject this appointment")
	}

	if appointment.Status != model.AppointmentStatusPending {
		return fmt.Errorf("appointment is not pending")
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, model.AppointmentStatusRejected); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	metrics.IncBookingDecision("rejected")

	s.logger.Info("Appointment rejected",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("instructor_id", instructorID),
	)

	if instructor, err := s.instructorRepo.GetByID(ctx, instructorID); err == nil && instructor != nil {
		appointment.Status = model.AppointmentStatusRejected
		s.dropCalendarMirror(ctx, instructor, appointment)
		s.notifier.BookingRejected(ctx, instructor, appointment)
	}

	return nil
}

// Cancel отменяет активную запись. Отменить может студент или инструктор.
func (s *BookingService) Cancel(ctx context.Context, appointmentID, userID int64, reason string) error {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("get appointment: %w", err)
	}

	if appointment == nil {
		return fmt.Errorf("appointment not found")
	}

	if appointment.StudentID != userID && appointment.InstructorID != userID {
		return fmt.Errorf("no permission to cancel this appointment")
	}

	if !appointment.IsActive() {
		return fmt.Errorf("appointment is not active")
	}

	if err := s.appointmentRepo.Cancel(ctx, appointmentID, reason); err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}

	s.logger.Info("Appointment cancelled",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("user_id", userID),
		zap.String("reason", reason),
	)

	if instructor, err := s.instructorRepo.GetByID(ctx, appointment.InstructorID); err == nil && instructor != nil {
		appointment.Status = model.AppointmentStatusCancelled
		s.dropCalendarMirror(ctx, instructor, appointment)
		s.notifier.BookingCancelled(ctx, instructor, appointment, reason)
	}

	return nil
}

// GetPending возвращает записи инструктора, ожидающие одобрения
func (s *BookingService) GetPending(ctx context.Context, instructorID int64) ([]*model.Appointment, error) {
	return s.appointmentRepo.GetPendingByInstructorID(ctx, instructorID)
}

// GetByID получает запись по ID
func (s *BookingService) GetByID(ctx context.Context, appointmentID int64) (*model.Appointment, error) {
	return s.appointmentRepo.GetByID(ctx, appointmentID)
}

// CompleteExpired переводит закончившиеся подтверждённые записи в completed.
// Дёргается фоновым свипером.
func (s *BookingService) CompleteExpired(ctx context.Context) (int64, error) {
	count, err := s.appointmentRepo.CompleteBefore(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("complete expired appointments: %w", err)
	}

	if count > 0 {
		s.logger.Info("Completed past appointments", zap.Int64("count", count))
	}

	return count, nil
}
