package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sgurkov/lesson_booking/internal/app"
	"github.com/sgurkov/lesson_booking/internal/calendar"
	"github.com/sgurkov/lesson_booking/internal/config"
	"github.com/sgurkov/lesson_booking/internal/metrics"
	"github.com/sgurkov/lesson_booking/internal/notify"
	"github.com/sgurkov/lesson_booking/internal/repository"
	"github.com/sgurkov/lesson_booking/internal/server"
	"github.com/sgurkov/lesson_booking/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting booking engine",
		"environment", cfg.Environment,
		"http_addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	metrics.Register()

	// Репозитории
	instructorRepo := repository.NewInstructorRepository(pool)
	typeRepo := repository.NewAppointmentTypeRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	overrideRepo := repository.NewOverrideRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)

	// Внешний календарь: Google если есть credentials, иначе заглушка
	var calendarService calendar.Service
	if cfg.GoogleCredentialsJSON != "" {
		googleCalendar, err := calendar.NewGoogleCalendar([]byte(cfg.GoogleCredentialsJSON), logger)
		if err != nil {
			logger.Fatal("Failed to create google calendar backend", zap.Error(err))
		}
		calendarService = googleCalendar
		logger.Info("Google calendar backend enabled")
	} else {
		calendarService = calendar.NewDisconnected()
		logger.Info("External calendar integration disabled")
	}

	// Кэш занятости поверх календаря, если настроен redis
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		calendarService = calendar.NewBusyCache(calendarService, redisClient, cfg.BusyCacheTTL, logger)
		logger.Info("Busy interval cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	// Уведомления инструкторам
	var notifier service.Notifier
	if cfg.TelegramToken != "" {
		telegramNotifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram notifier", zap.Error(err))
		}
		notifier = telegramNotifier
		logger.Info("Telegram notifications enabled")
	} else {
		notifier = notify.NewNoop()
	}

	// Сервисы
	availabilityService := service.NewAvailabilityService(templateRepo, overrideRepo, logger)
	conflictService := service.NewConflictService(appointmentRepo, courseRepo, calendarService, logger)
	slotService := service.NewSlotService(instructorRepo, typeRepo, availabilityService, conflictService, logger)
	bookingService := service.NewBookingService(
		instructorRepo,
		typeRepo,
		appointmentRepo,
		courseRepo,
		availabilityService,
		calendarService,
		notifier,
		logger,
	)

	// Фоновый перевод прошедших записей в completed
	sweeper := app.NewSweeper(bookingService, cfg.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(bookingService, slotService, typeRepo, templateRepo, overrideRepo, logger).Router(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}
