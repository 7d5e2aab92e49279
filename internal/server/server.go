package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/sgurkov/lesson_booking/internal/service"
	"go.uber.org/zap"
)

// TemplateManager ведение еженедельного шаблона инструктора
type TemplateManager interface {
	Create(ctx context.Context, template *model.WeeklyTemplate) error
	Delete(ctx context.Context, id, instructorID int64) error
}

// OverrideManager ведение переопределений доступности
type OverrideManager interface {
	Create(ctx context.Context, override *model.AvailabilityOverride) error
	DeleteGroup(ctx context.Context, instructorID int64, groupID string) error
}

// Server тонкий HTTP-слой: разобрать запрос, позвать сервис, отдать JSON.
// Бизнес-правил здесь нет.
type Server struct {
	bookingService *service.BookingService
	slotService    *service.SlotService
	typeRepo       service.AppointmentTypeStore
	templateRepo   TemplateManager
	overrideRepo   OverrideManager
	logger         *zap.Logger
}

func New(
	bookingService *service.BookingService,
	slotService *service.SlotService,
	typeRepo service.AppointmentTypeStore,
	templateRepo TemplateManager,
	overrideRepo OverrideManager,
	logger *zap.Logger,
) *Server {
	return &Server{
		bookingService: bookingService,
		slotService:    slotService,
		typeRepo:       typeRepo,
		templateRepo:   templateRepo,
		overrideRepo:   overrideRepo,
		logger:         logger,
	}
}

// Router собирает маршруты
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/instructors/{instructorID}", func(r chi.Router) {
		r.Get("/appointment-types", s.handleListAppointmentTypes)
		r.Get("/slots", s.handleListSlots)
		r.Get("/pending", s.handleListPending)

		r.Post("/templates", s.handleCreateTemplate)
		r.Delete("/templates/{templateID}", s.handleDeleteTemplate)
		r.Post("/overrides", s.handleCreateOverride)
		r.Delete("/overrides/{groupID}", s.handleDeleteOverride)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", s.handleBook)
		r.Post("/{appointmentID}/reschedule", s.handleReschedule)
		r.Post("/{appointmentID}/approve", s.handleApprove)
		r.Post("/{appointmentID}/reject", s.handleReject)
		r.Post("/{appointmentID}/cancel", s.handleCancel)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
