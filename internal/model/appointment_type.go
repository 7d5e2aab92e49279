package model

import "time"

// AppointmentType вид занятия у инструктора.
// Ровно один режим длительности: либо фиксированный DurationMinutes,
// либо вариативный (MinimumDurationHours + DurationIncrementMinutes).
type AppointmentType struct {
	ID                       int64     `json:"id"`
	InstructorID             int64     `json:"instructor_id"`
	Title                    string    `json:"title"`
	Description              string    `json:"description"`
	DurationMinutes          *int      `json:"duration_minutes"`           // фиксированная длительность
	MinimumDurationHours     *int      `json:"minimum_duration_hours"`     // вариативная: минимум в часах
	DurationIncrementMinutes *int      `json:"duration_increment_minutes"` // вариативная: шаг в минутах
	Price                    int       `json:"price"` // в копейках/центах; для вариативных - за час
	BufferBeforeMinutes      int       `json:"buffer_before_minutes"`
	BufferAfterMinutes       int       `json:"buffer_after_minutes"`
	MaxPartySize             int       `json:"max_party_size"`
	RequiresApproval         bool      `json:"requires_approval"` // записи уходят в pending до одобрения
	IsActive                 bool      `json:"is_active"`
	CreatedAt                time.Time `json:"created_at"`
}

// IsFixedDuration проверяет что у типа фиксированная длительность
func (t *AppointmentType) IsFixedDuration() bool {
	return t.DurationMinutes != nil
}

// AllowsDuration проверяет длительность запроса против политики типа.
// Фиксированный тип: ровно DurationMinutes.
// Вариативный: не меньше минимума и ровно на шаге инкремента над ним.
func (t *AppointmentType) AllowsDuration(minutes int) bool {
	if minutes <= 0 {
		return false
	}

	if t.IsFixedDuration() {
		return minutes == *t.DurationMinutes
	}

	if t.MinimumDurationHours == nil {
		return false
	}

	minimum := *t.MinimumDurationHours * 60
	if minutes < minimum {
		return false
	}

	// Без инкремента разрешён только сам минимум
	if t.DurationIncrementMinutes == nil || *t.DurationIncrementMinutes <= 0 {
		return minutes == minimum
	}

	return (minutes-minimum)%*t.DurationIncrementMinutes == 0
}
