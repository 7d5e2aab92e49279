package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string
	Environment string
	HTTPAddr    string

	// Телеграм-уведомления инструкторам; пусто = уведомления выключены
	TelegramToken string

	// OAuth-credentials для Google Calendar; пусто = интеграция выключена
	GoogleCredentialsJSON string

	// Redis для кэша занятости внешнего календаря; пусто = без кэша
	RedisAddr    string
	BusyCacheTTL time.Duration

	SweepInterval time.Duration
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:                 os.Getenv("DB_DSN"),
		Environment:           os.Getenv("ENV"),
		HTTPAddr:              os.Getenv("HTTP_ADDR"),
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		BusyCacheTTL:          durationEnv("BUSY_CACHE_TTL_SECONDS", 60*time.Second),
		SweepInterval:         durationEnv("SWEEP_INTERVAL_SECONDS", time.Hour),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using default", key, raw)
		return fallback
	}

	return time.Duration(seconds) * time.Second
}
