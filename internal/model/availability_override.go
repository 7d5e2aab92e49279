package model

import (
	"time"

	"github.com/google/uuid"
)

type OverrideKind string

const (
	OverrideWholeDayBlock OverrideKind = "whole_day_block" // закрыт весь день
	OverridePartialBlock  OverrideKind = "partial_block"   // вырезается окно из шаблонных блоков
	OverrideAddition      OverrideKind = "addition"        // дополнительный блок сверх шаблона
)

// AvailabilityOverride исключение из еженедельного шаблона на конкретную дату
// или диапазон дат. Переопределения одной многодневной записи связаны GroupID.
type AvailabilityOverride struct {
	ID               int64     `json:"id"`
	GroupID          uuid.UUID `json:"group_id"`
	InstructorID     int64     `json:"instructor_id"`
	StartDate        time.Time `json:"start_date"` // календарная дата, без времени
	EndDate          time.Time `json:"end_date"`
	StartTime        *string   `json:"start_time"` // "HH:MM", nil для блокировки всего дня
	EndTime          *string   `json:"end_time"`
	IsAvailable      bool      `json:"is_available"`
	RequiresApproval bool      `json:"requires_approval"`
	CreatedAt        time.Time `json:"created_at"`
}

// Kind определяет семантику переопределения
func (o *AvailabilityOverride) Kind() OverrideKind {
	if o.IsAvailable {
		return OverrideAddition
	}
	if o.StartTime == nil || o.EndTime == nil {
		return OverrideWholeDayBlock
	}
	return OverridePartialBlock
}

// AppliesTo проверяет попадает ли календарный день в диапазон переопределения.
// Сравниваются только даты, время отбрасывается.
func (o *AvailabilityOverride) AppliesTo(day time.Time) bool {
	d := day.Format("2006-01-02")
	return d >= o.StartDate.Format("2006-01-02") && d <= o.EndDate.Format("2006-01-02")
}
