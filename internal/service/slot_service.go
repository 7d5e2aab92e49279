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

// SlotUnavailableReason текст для занятых слотов в выдаче
const SlotUnavailableReason = "conflicts with an existing commitment"

// SlotService нарезает блоки доступности на дискретные слоты запрошенной длительности
type SlotService struct {
	instructorRepo InstructorStore
	typeRepo       AppointmentTypeStore
	availability   *AvailabilityService
	conflicts      *ConflictService
	logger         *zap.Logger
}

func NewSlotService(
	instructorRepo InstructorStore,
	typeRepo AppointmentTypeStore,
	availability *AvailabilityService,
	conflicts *ConflictService,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		instructorRepo: instructorRepo,
		typeRepo:       typeRepo,
		availability:   availability,
		conflicts:      conflicts,
		logger:         logger,
	}
}

// GenerateSlots выдаёт слоты длительности slotDurationMinutes по всем блокам
// доступности в [startDate, endDate]. Слот никогда не вылезает за границу
// блока: неполный хвост не выдаётся вовсе.
//
// Просмотр слотов неактивного или чужого типа - не ошибка, просто пустой список.
func (s *SlotService) GenerateSlots(ctx context.Context, instructorID, appointmentTypeID int64, startDate, endDate time.Time, slotDurationMinutes int) ([]model.TimeSlot, error) {
	if slotDurationMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", slotDurationMinutes)
	}

	instructor, err := s.instructorRepo.GetByID(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	if instructor == nil {
		return []model.TimeSlot{}, nil
	}

	appointmentType, err := s.typeRepo.GetByID(ctx, appointmentTypeID)
	if err != nil {
		return nil, fmt.Errorf("get appointment type: %w", err)
	}
	if appointmentType == nil || !appointmentType.IsActive || appointmentType.InstructorID != instructorID {
		return []model.TimeSlot{}, nil
	}

	loc, err := instructor.Location()
	if err != nil {
		return nil, fmt.Errorf("load instructor timezone: %w", err)
	}

	// Параметры диапазона - календарные даты; зона, в которой их распарсил
	// вызывающий, не обязана совпадать с зоной инструктора. Без перечитки
	// полночь UTC западнее нуля уезжает на день назад.
	startDate = timeutil.AsLocalDate(startDate, loc)
	endDate = timeutil.AsLocalDate(endDate, loc)

	blocksByDay, err := s.availability.ResolveBlocks(ctx, instructorID, startDate, endDate, loc)
	if err != nil {
		return nil, fmt.Errorf("resolve availability: %w", err)
	}

	days := timeutil.DaysBetween(startDate, endDate, loc)
	if len(days) == 0 {
		return []model.TimeSlot{}, nil
	}

	// Диапазон конфликтов накрывает все дни целиком
	rangeFrom := days[0].UTC()
	rangeTo := days[len(days)-1].AddDate(0, 0, 1).UTC()

	conflicts, err := s.conflicts.Collect(ctx, instructor, rangeFrom, rangeTo)
	if err != nil {
		return nil, fmt.Errorf("collect conflicts: %w", err)
	}

	slots := []model.TimeSlot{}
	duration := time.Duration(slotDurationMinutes) * time.Minute

	for _, day := range days {
		blocks := blocksByDay[day.Format("2006-01-02")]

		// Блоки в пределах дня отдаём по возрастанию начала
		sort.SliceStable(blocks, func(i, j int) bool {
			return blocks[i].StartTime < blocks[j].StartTime
		})

		for _, block := range blocks {
			blockStart, err := timeutil.LocalWallClockToUTC(day, block.StartTime, loc)
			if err != nil {
				return nil, fmt.Errorf("block start: %w", err)
			}
			blockEnd, err := timeutil.LocalWallClockToUTC(day, block.EndTime, loc)
			if err != nil {
				return nil, fmt.Errorf("block end: %w", err)
			}

			for cursor := blockStart; !cursor.Add(duration).After(blockEnd); cursor = cursor.Add(duration) {
				slot := model.TimeSlot{
					StartTime:        cursor,
					EndTime:          cursor.Add(duration),
					IsAvailable:      true,
					RequiresApproval: block.RequiresApproval,
				}

				for _, c := range conflicts {
					if timeutil.Overlaps(slot.StartTime, slot.EndTime, c.StartTime, c.EndTime) {
						slot.IsAvailable = false
						slot.Reason = SlotUnavailableReason
						break
					}
				}

				slots = append(slots, slot)
			}
		}
	}

	return slots, nil
}
