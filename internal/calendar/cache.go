package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sgurkov/lesson_booking/internal/model"
	"go.uber.org/zap"
)

// BusyCache кэширует GetBusyIntervals в redis с коротким TTL.
// Кэш только для просмотра слотов; CheckConflict при коммите брони
// всегда идёт в бэкенд напрямую, мимо кэша.
type BusyCache struct {
	backend Service
	client  *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
}

func NewBusyCache(backend Service, client *redis.Client, ttl time.Duration, logger *zap.Logger) *BusyCache {
	return &BusyCache{
		backend: backend,
		client:  client,
		ttl:     ttl,
		logger:  logger,
	}
}

func busyKey(instructorID int64, from, to time.Time) string {
	return fmt.Sprintf("calendar:busy:%d:%d:%d", instructorID, from.Unix(), to.Unix())
}

// GetBusyIntervals отдаёт из кэша если есть, иначе ходит в бэкенд.
// Ошибки redis не фатальны - просто идём в бэкенд.
func (c *BusyCache) GetBusyIntervals(ctx context.Context, instructor *model.Instructor, from, to time.Time) ([]BusyInterval, error) {
	key := busyKey(instructor.ID, from, to)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var intervals []BusyInterval
		if err := json.Unmarshal([]byte(cached), &intervals); err == nil {
			return intervals, nil
		}
		// Битое значение в кэше - перечитываем из бэкенда
	} else if err != redis.Nil {
		c.logger.Warn("Busy cache read failed, falling through to backend",
			zap.Int64("instructor_id", instructor.ID),
			zap.Error(err))
	}

	intervals, err := c.backend.GetBusyIntervals(ctx, instructor, from, to)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(intervals); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Busy cache write failed",
				zap.Int64("instructor_id", instructor.ID),
				zap.Error(err))
		}
	}

	return intervals, nil
}

func (c *BusyCache) CheckConflict(ctx context.Context, instructor *model.Instructor, start, end time.Time) (ConflictCheck, error) {
	return c.backend.CheckConflict(ctx, instructor, start, end)
}

func (c *BusyCache) CreateEvent(ctx context.Context, instructor *model.Instructor, event Event) (string, error) {
	return c.backend.CreateEvent(ctx, instructor, event)
}

func (c *BusyCache) UpdateEvent(ctx context.Context, instructor *model.Instructor, eventID string, event Event) error {
	return c.backend.UpdateEvent(ctx, instructor, eventID, event)
}

func (c *BusyCache) DeleteEvent(ctx context.Context, instructor *model.Instructor, eventID string) error {
	return c.backend.DeleteEvent(ctx, instructor, eventID)
}
