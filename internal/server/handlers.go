package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/sgurkov/lesson_booking/internal/service"
	"github.com/sgurkov/lesson_booking/internal/timeutil"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// handleListAppointmentTypes отдаёт активные типы занятий инструктора
func (s *Server) handleListAppointmentTypes(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := pathID(r, "instructorID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid instructor id")
		return
	}

	types, err := s.typeRepo.GetActiveByInstructorID(r.Context(), instructorID)
	if err != nil {
		s.logger.Error("Failed to list appointment types", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusOK, types)
}

// handleListSlots отдаёт слоты доступности на диапазон дат
// GET /instructors/{id}/slots?type_id=&from=&to=&duration=
func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := pathID(r, "instructorID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid instructor id")
		return
	}

	typeID, err := strconv.ParseInt(r.URL.Query().Get("type_id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid type_id")
		return
	}

	from, err := time.Parse(dateLayout, r.URL.Query().Get("from"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
		return
	}

	to, err := time.Parse(dateLayout, r.URL.Query().Get("to"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
		return
	}

	duration, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if err != nil || duration <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid duration")
		return
	}

	slots, err := s.slotService.GenerateSlots(r.Context(), instructorID, typeID, from, to, duration)
	if err != nil {
		s.logger.Error("Failed to generate slots", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusOK, slots)
}

// handleListPending отдаёт записи инструктора, ожидающие одобрения
func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := pathID(r, "instructorID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid instructor id")
		return
	}

	appointments, err := s.bookingService.GetPending(r.Context(), instructorID)
	if err != nil {
		s.logger.Error("Failed to list pending appointments", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusOK, appointments)
}

type templatePayload struct {
	DayOfWeek        int    `json:"day_of_week"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	RequiresApproval bool   `json:"requires_approval"`
}

// handleCreateTemplate добавляет окно еженедельного шаблона
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := pathID(r, "instructorID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid instructor id")
		return
	}

	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.DayOfWeek < 0 || payload.DayOfWeek > 6 {
		s.respondError(w, http.StatusBadRequest, "day_of_week must be 0-6")
		return
	}
	if !validWallClockWindow(payload.StartTime, payload.EndTime) {
		s.respondError(w, http.StatusBadRequest, "start_time/end_time must be HH:MM with start before end")
		return
	}

	template := &model.WeeklyTemplate{
		InstructorID:     instructorID,
		DayOfWeek:        payload.DayOfWeek,
		StartTime:        payload.StartTime,
		EndTime:          payload.EndTime,
		RequiresApproval: payload.RequiresApproval,
		IsActive:         true,
	}

	if err := s.templateRepo.Create(r.Context(), template); err != nil {
		s.logger.Error("Failed to create weekly template", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusCreated, template)
}

// handleDeleteTemplate удаляет окно еженедельного шаблона
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := pathID(r, "instructorID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid instructor id")
		return
	}

	templateID, ok := pathID(r, "templateID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	if err := s.templateRepo.Delete(r.Context(), templateID, instructorID); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type overridePayload struct {
	StartDate        string  `json:"start_date"` // "2006-01-02"
	EndDate          string  `json:"end_date"`
	StartTime        *string `json:"start_time"`
	EndTime          *string `json:"end_time"`
	IsAvailable      bool    `json:"is_available"`
	RequiresApproval bool    `json:"requires_approval"`
}

// handleCreateOverride добавляет переопределение доступности на дату или диапазон
func (s *Server) handleCreateOverride(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := pathID(r, "instructorID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid instructor id")
		return
	}

	var payload overridePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startDate, err := time.Parse(dateLayout, payload.StartDate)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return
	}

	endDate := startDate
	if payload.EndDate != "" {
		endDate, err = time.Parse(dateLayout, payload.EndDate)
		if err != nil || endDate.Before(startDate) {
			s.respondError(w, http.StatusBadRequest, "invalid end_date")
			return
		}
	}

	// Время либо парное, либо отсутствует; добавление доступности без окна не имеет смысла
	if (payload.StartTime == nil) != (payload.EndTime == nil) {
		s.respondError(w, http.StatusBadRequest, "start_time and end_time must be set together")
		return
	}
	if payload.StartTime != nil && !validWallClockWindow(*payload.StartTime, *payload.EndTime) {
		s.respondError(w, http.StatusBadRequest, "start_time/end_time must be HH:MM with start before end")
		return
	}
	if payload.IsAvailable && payload.StartTime == nil {
		s.respondError(w, http.StatusBadRequest, "availability addition requires start_time and end_time")
		return
	}

	override := &model.AvailabilityOverride{
		GroupID:          uuid.New(),
		InstructorID:     instructorID,
		StartDate:        startDate,
		EndDate:          endDate,
		StartTime:        payload.StartTime,
		EndTime:          payload.EndTime,
		IsAvailable:      payload.IsAvailable,
		RequiresApproval: payload.RequiresApproval,
	}

	if err := s.overrideRepo.Create(r.Context(), override); err != nil {
		s.logger.Error("Failed to create availability override", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusCreated, override)
}

// handleDeleteOverride удаляет группу переопределений
func (s *Server) handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := pathID(r, "instructorID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid instructor id")
		return
	}

	groupID, err := uuid.Parse(chi.URLParam(r, "groupID"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := s.overrideRepo.DeleteGroup(r.Context(), instructorID, groupID.String()); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// validWallClockWindow проверяет пару "HH:MM" с началом строго раньше конца
func validWallClockWindow(start, end string) bool {
	s, err := timeutil.ParseWallClock(start)
	if err != nil {
		return false
	}
	e, err := timeutil.ParseWallClock(end)
	if err != nil {
		return false
	}
	return s < e
}

type bookPayload struct {
	InstructorID      int64     `json:"instructor_id"`
	StudentID         int64     `json:"student_id"`
	AppointmentTypeID int64     `json:"appointment_type_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	PartySize         int       `json:"party_size"`
	PaymentStatus     string    `json:"payment_status"`
	PaymentAmount     int       `json:"payment_amount"`
	Comment           string    `json:"comment"`
}

// handleBook проводит бронирование
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var payload bookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appointment, result, err := s.bookingService.Book(r.Context(), service.BookRequest{
		InstructorID:      payload.InstructorID,
		StudentID:         payload.StudentID,
		AppointmentTypeID: payload.AppointmentTypeID,
		StartTime:         payload.StartTime,
		EndTime:           payload.EndTime,
		PartySize:         payload.PartySize,
		PaymentStatus:     payload.PaymentStatus,
		PaymentAmount:     payload.PaymentAmount,
		Comment:           payload.Comment,
	})

	if err != nil {
		s.logger.Error("Booking failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !result.Valid {
		s.respondJSON(w, http.StatusConflict, result)
		return
	}

	s.respondJSON(w, http.StatusCreated, appointment)
}

type reschedulePayload struct {
	UserID    int64     `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// handleReschedule переносит запись на новый интервал
func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(r, "appointmentID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var payload reschedulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.bookingService.Reschedule(r.Context(), appointmentID, payload.UserID, payload.StartTime, payload.EndTime)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if !result.Valid {
		s.respondJSON(w, http.StatusConflict, result)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "rescheduled"})
}

type decisionPayload struct {
	InstructorID int64 `json:"instructor_id"`
}

// handleApprove одобряет запись
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(r, "appointmentID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.bookingService.Approve(r.Context(), appointmentID, payload.InstructorID); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

// handleReject отклоняет запись
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(r, "appointmentID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.bookingService.Reject(r.Context(), appointmentID, payload.InstructorID); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

type cancelPayload struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
}

// handleCancel отменяет запись
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(r, "appointmentID")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var payload cancelPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.bookingService.Cancel(r.Context(), appointmentID, payload.UserID, payload.Reason); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
