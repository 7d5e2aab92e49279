package app

import (
	"context"
	"time"

	"github.com/sgurkov/lesson_booking/internal/service"
	"go.uber.org/zap"
)

// Sweeper фоновая задача: закончившиеся подтверждённые записи
// переводятся в completed
type Sweeper struct {
	bookingService *service.BookingService
	interval       time.Duration
	logger         *zap.Logger
	stopChan       chan struct{}
}

// NewSweeper создаёт новый свипер
func NewSweeper(bookingService *service.BookingService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		bookingService: bookingService,
		interval:       interval,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start запускает фоновую задачу
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting completion sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop останавливает фоновую задачу
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping completion sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// Первый проход сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Completion sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Completion sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.bookingService.CompleteExpired(ctx); err != nil {
		s.logger.Error("Completion sweep failed", zap.Error(err))
	}
}
