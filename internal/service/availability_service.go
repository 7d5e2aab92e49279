package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/sgurkov/lesson_booking/internal/timeutil"
	"go.uber.org/zap"
)

// AvailabilityService раскладывает еженедельный шаблон и переопределения
// в конкретные блоки доступности по дням
type AvailabilityService struct {
	templateRepo TemplateStore
	overrideRepo OverrideStore
	logger       *zap.Logger
}

func NewAvailabilityService(
	templateRepo TemplateStore,
	overrideRepo OverrideStore,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		templateRepo: templateRepo,
		overrideRepo: overrideRepo,
		logger:       logger,
	}
}

// ResolveBlocks считает блоки доступности инструктора на каждый день
// диапазона [startDate, endDate] включительно. Ключ - локальная дата "2006-01-02".
//
// Порядок наложения на день фиксирован:
//  1. блокировка всего дня обнуляет день и дальше не смотрим;
//  2. частичные блокировки вычитаются из шаблонных блоков;
//  3. добавления дописываются отдельными блоками (вычитания их не трогают).
func (s *AvailabilityService) ResolveBlocks(ctx context.Context, instructorID int64, startDate, endDate time.Time, loc *time.Location) (map[string][]model.AvailabilityBlock, error) {
	days := timeutil.DaysBetween(startDate, endDate, loc)
	if len(days) == 0 {
		return map[string][]model.AvailabilityBlock{}, nil
	}

	// Границы для хранилища - календарные даты, не моменты: DATE-колонка
	// сравнивается с полуночью, и момент внутри дня отфильтровал бы
	// переопределения, заканчивающиеся этим же днём
	overrides, err := s.overrideRepo.GetByInstructorInRange(ctx, instructorID,
		timeutil.AsLocalDate(days[0], time.UTC),
		timeutil.AsLocalDate(days[len(days)-1], time.UTC))
	if err != nil {
		return nil, fmt.Errorf("get overrides: %w", err)
	}

	// Репозиторий уже сортирует по (created_at, id), но от хранилища это
	// не гарантировано - пересортировываем для воспроизводимости
	sort.SliceStable(overrides, func(i, j int) bool {
		if overrides[i].CreatedAt.Equal(overrides[j].CreatedAt) {
			return overrides[i].ID < overrides[j].ID
		}
		return overrides[i].CreatedAt.Before(overrides[j].CreatedAt)
	})

	// Шаблоны на день недели запрашиваем один раз
	templatesByWeekday := make(map[int][]*model.WeeklyTemplate)

	result := make(map[string][]model.AvailabilityBlock)

	for _, day := range days {
		weekday := int(day.Weekday())

		templates, ok := templatesByWeekday[weekday]
		if !ok {
			templates, err = s.templateRepo.GetActiveByInstructorAndDay(ctx, instructorID, weekday)
			if err != nil {
				return nil, fmt.Errorf("get templates for weekday %d: %w", weekday, err)
			}
			templatesByWeekday[weekday] = templates
		}

		var dayOverrides []*model.AvailabilityOverride
		for _, o := range overrides {
			if o.AppliesTo(day) {
				dayOverrides = append(dayOverrides, o)
			}
		}

		blocks, err := s.resolveDay(weekday, templates, dayOverrides)
		if err != nil {
			return nil, fmt.Errorf("resolve day %s: %w", day.Format("2006-01-02"), err)
		}

		result[day.Format("2006-01-02")] = blocks
	}

	return result, nil
}

// resolveDay накладывает переопределения одного дня на шаблонные блоки
func (s *AvailabilityService) resolveDay(weekday int, templates []*model.WeeklyTemplate, overrides []*model.AvailabilityOverride) ([]model.AvailabilityBlock, error) {
	// Блокировка всего дня закрывает день независимо от шаблона
	for _, o := range overrides {
		if o.Kind() == model.OverrideWholeDayBlock {
			return []model.AvailabilityBlock{}, nil
		}
	}

	type span struct {
		timeutil.Span
		requiresApproval bool
	}

	var blocks []span
	for _, t := range templates {
		start, err := timeutil.ParseWallClock(t.StartTime)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", t.ID, err)
		}
		end, err := timeutil.ParseWallClock(t.EndTime)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", t.ID, err)
		}

		blocks = append(blocks, span{
			Span:             timeutil.Span{Start: start, End: end},
			requiresApproval: t.RequiresApproval,
		})
	}

	// Частичные блокировки вычитаются только из шаблонных блоков
	for _, o := range overrides {
		if o.Kind() != model.OverridePartialBlock {
			continue
		}

		removeStart, err := timeutil.ParseWallClock(*o.StartTime)
		if err != nil {
			return nil, fmt.Errorf("override %d: %w", o.ID, err)
		}
		removeEnd, err := timeutil.ParseWallClock(*o.EndTime)
		if err != nil {
			return nil, fmt.Errorf("override %d: %w", o.ID, err)
		}
		remove := timeutil.Span{Start: removeStart, End: removeEnd}

		var remaining []span
		for _, b := range blocks {
			for _, piece := range timeutil.Subtract(b.Span, remove) {
				remaining = append(remaining, span{Span: piece, requiresApproval: b.requiresApproval})
			}
		}
		blocks = remaining
	}

	result := make([]model.AvailabilityBlock, 0, len(blocks))
	for _, b := range blocks {
		result = append(result, model.AvailabilityBlock{
			DayOfWeek:        weekday,
			StartTime:        timeutil.FormatWallClock(b.Start),
			EndTime:          timeutil.FormatWallClock(b.End),
			RequiresApproval: b.requiresApproval,
		})
	}

	// Добавления дописываются в конец, вычитания выше их не затрагивают
	for _, o := range overrides {
		if o.Kind() != model.OverrideAddition || o.StartTime == nil || o.EndTime == nil {
			continue
		}

		result = append(result, model.AvailabilityBlock{
			DayOfWeek:        weekday,
			StartTime:        *o.StartTime,
			EndTime:          *o.EndTime,
			RequiresApproval: o.RequiresApproval,
		})
	}

	return result, nil
}
