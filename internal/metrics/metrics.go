package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesson_booking",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by initial status.",
		},
		[]string{"status"},
	)

	validationRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesson_booking",
			Name:      "validation_rejected_total",
			Help:      "Count of booking requests rejected by validation, by reason code.",
		},
		[]string{"reason"},
	)

	calendarErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lesson_booking",
			Name:      "calendar_errors_total",
			Help:      "Count of external calendar call failures (swallowed, fail-open).",
		},
	)

	bookingDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lesson_booking",
			Name:      "booking_decision_total",
			Help:      "Count of instructor decisions over pending bookings.",
		},
		[]string{"decision"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, validationRejected, calendarErrors, bookingDecision)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncValidationRejected(reason string) {
	validationRejected.WithLabelValues(reason).Inc()
}

func IncCalendarError() {
	calendarErrors.Inc()
}

func IncBookingDecision(decision string) {
	bookingDecision.WithLabelValues(decision).Inc()
}
