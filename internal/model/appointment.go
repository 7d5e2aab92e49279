package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"   // Ожидает одобрения инструктора
	AppointmentStatusConfirmed AppointmentStatus = "confirmed" // Подтверждено
	AppointmentStatusRejected  AppointmentStatus = "rejected"  // Отклонено инструктором
	AppointmentStatusCancelled AppointmentStatus = "cancelled" // Отменено
	AppointmentStatusCompleted AppointmentStatus = "completed" // Завершено
)

type Appointment struct {
	ID                 int64             `json:"id"`
	InstructorID       int64             `json:"instructor_id"`
	StudentID          int64             `json:"student_id"`
	AppointmentTypeID  int64             `json:"appointment_type_id"`
	StartTime          time.Time         `json:"start_time"` // UTC
	EndTime            time.Time         `json:"end_time"`   // UTC
	Status             AppointmentStatus `json:"status"`
	PartySize          int               `json:"party_size"`
	PaymentStatus      string            `json:"payment_status"` // уже проверен выше по потоку
	PaymentAmount      int               `json:"payment_amount"` // в копейках/центах
	Comment            string            `json:"comment"`
	CancellationReason *string           `json:"cancellation_reason"`
	ExternalEventID    *string           `json:"external_event_id"` // id зеркальной записи во внешнем календаре
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	AppointmentType *AppointmentType `json:"appointment_type,omitempty"`
}

// IsActive активные записи блокируют пересекающееся время
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed
}

// IsTerminal терминальные статусы, из которых переходов нет
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// DurationMinutes длительность записи в минутах
func (a *Appointment) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime) / time.Minute)
}
