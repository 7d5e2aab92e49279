package notify

import (
	"context"

	"github.com/sgurkov/lesson_booking/internal/model"
)

// Notifier уведомляет инструктора о событиях бронирования.
// Доставка best-effort: сбой уведомления никогда не роняет операцию.
type Notifier interface {
	BookingCreated(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, appointmentType *model.AppointmentType)
	BookingApproved(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment)
	BookingRejected(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment)
	BookingCancelled(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, reason string)
}

// Noop заглушка на случай когда уведомления выключены
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) BookingCreated(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, appointmentType *model.AppointmentType) {
}

func (n *Noop) BookingApproved(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment) {
}

func (n *Noop) BookingRejected(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment) {
}

func (n *Noop) BookingCancelled(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, reason string) {
}
