package model

import "time"

// AvailabilityBlock рассчитанное окно доступности на конкретный день.
// Не хранится в БД - результат наложения переопределений на шаблон.
type AvailabilityBlock struct {
	DayOfWeek        int    `json:"day_of_week"`
	StartTime        string `json:"start_time"` // локальное "HH:MM"
	EndTime          string `json:"end_time"`
	RequiresApproval bool   `json:"requires_approval"`
}

type ConflictSource string

const (
	ConflictSourceAppointment ConflictSource = "appointment"
	ConflictSourceCourse      ConflictSource = "course"
	ConflictSourceExternal    ConflictSource = "external-calendar"
)

// Conflict занятый интервал из любого источника, UTC
type Conflict struct {
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Source    ConflictSource `json:"source"`
	Label     string         `json:"label,omitempty"`
}

// TimeSlot кандидат на бронирование, показывается студенту
type TimeSlot struct {
	StartTime        time.Time `json:"start_time"` // UTC
	EndTime          time.Time `json:"end_time"`   // UTC
	IsAvailable      bool      `json:"is_available"`
	RequiresApproval bool      `json:"requires_approval"`
	Reason           string    `json:"reason,omitempty"` // заполнен если слот недоступен
}
