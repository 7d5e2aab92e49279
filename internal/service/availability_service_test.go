package service

import (
	"context"
	"testing"
	"time"

	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Понедельник
var testMonday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func mondayTemplate(id int64) *model.WeeklyTemplate {
	return &model.WeeklyTemplate{
		ID:           id,
		InstructorID: 1,
		DayOfWeek:    1,
		StartTime:    "09:00",
		EndTime:      "17:00",
		IsActive:     true,
	}
}

func newAvailabilityService(templates *mockTemplateStore, overrides *mockOverrideStore) *AvailabilityService {
	return NewAvailabilityService(templates, overrides, zap.NewNop())
}

func TestResolveBlocksTemplateOnly(t *testing.T) {
	templates := new(mockTemplateStore)
	overrides := new(mockOverrideStore)

	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 1).
		Return([]*model.WeeklyTemplate{mondayTemplate(10)}, nil)
	overrides.On("GetByInstructorInRange", mock.Anything, int64(1), testMonday, testMonday).
		Return([]*model.AvailabilityOverride{}, nil)

	svc := newAvailabilityService(templates, overrides)

	blocks, err := svc.ResolveBlocks(context.Background(), 1, testMonday, testMonday, time.UTC)
	require.NoError(t, err)

	day := blocks["2025-06-02"]
	require.Len(t, day, 1)
	assert.Equal(t, "09:00", day[0].StartTime)
	assert.Equal(t, "17:00", day[0].EndTime)
	assert.Equal(t, 1, day[0].DayOfWeek)
}

func TestResolveBlocksWholeDayBlock(t *testing.T) {
	templates := new(mockTemplateStore)
	overrides := new(mockOverrideStore)

	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 1).
		Return([]*model.WeeklyTemplate{mondayTemplate(10)}, nil)
	overrides.On("GetByInstructorInRange", mock.Anything, int64(1), testMonday, testMonday).
		Return([]*model.AvailabilityOverride{
			{ID: 1, InstructorID: 1, StartDate: testMonday, EndDate: testMonday, IsAvailable: false},
		}, nil)

	svc := newAvailabilityService(templates, overrides)

	blocks, err := svc.ResolveBlocks(context.Background(), 1, testMonday, testMonday, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, blocks["2025-06-02"])
}

func TestResolveBlocksPartialBlockSplitsTemplate(t *testing.T) {
	templates := new(mockTemplateStore)
	overrides := new(mockOverrideStore)

	lunchStart, lunchEnd := "12:00", "13:00"

	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 1).
		Return([]*model.WeeklyTemplate{mondayTemplate(10)}, nil)
	overrides.On("GetByInstructorInRange", mock.Anything, int64(1), testMonday, testMonday).
		Return([]*model.AvailabilityOverride{
			{
				ID: 1, InstructorID: 1,
				StartDate: testMonday, EndDate: testMonday,
				StartTime: &lunchStart, EndTime: &lunchEnd,
				IsAvailable: false,
			},
		}, nil)

	svc := newAvailabilityService(templates, overrides)

	blocks, err := svc.ResolveBlocks(context.Background(), 1, testMonday, testMonday, time.UTC)
	require.NoError(t, err)

	day := blocks["2025-06-02"]
	require.Len(t, day, 2)
	assert.Equal(t, "09:00", day[0].StartTime)
	assert.Equal(t, "12:00", day[0].EndTime)
	assert.Equal(t, "13:00", day[1].StartTime)
	assert.Equal(t, "17:00", day[1].EndTime)
}

func TestResolveBlocksAdditionSurvivesPartialBlock(t *testing.T) {
	templates := new(mockTemplateStore)
	overrides := new(mockOverrideStore)

	addStart, addEnd := "18:00", "20:00"
	cutStart, cutEnd := "18:00", "19:00"

	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 1).
		Return([]*model.WeeklyTemplate{mondayTemplate(10)}, nil)
	// Вычитание создано позже добавления, но режет только шаблонные блоки
	overrides.On("GetByInstructorInRange", mock.Anything, int64(1), testMonday, testMonday).
		Return([]*model.AvailabilityOverride{
			{
				ID: 1, InstructorID: 1,
				StartDate: testMonday, EndDate: testMonday,
				StartTime: &addStart, EndTime: &addEnd,
				IsAvailable: true,
				CreatedAt:   testMonday,
			},
			{
				ID: 2, InstructorID: 1,
				StartDate: testMonday, EndDate: testMonday,
				StartTime: &cutStart, EndTime: &cutEnd,
				IsAvailable: false,
				CreatedAt:   testMonday.Add(time.Hour),
			},
		}, nil)

	svc := newAvailabilityService(templates, overrides)

	blocks, err := svc.ResolveBlocks(context.Background(), 1, testMonday, testMonday, time.UTC)
	require.NoError(t, err)

	day := blocks["2025-06-02"]
	require.Len(t, day, 2)
	assert.Equal(t, "09:00", day[0].StartTime)
	assert.Equal(t, "17:00", day[0].EndTime)
	assert.Equal(t, "18:00", day[1].StartTime)
	assert.Equal(t, "20:00", day[1].EndTime)
}

func TestResolveBlocksAdditionOnEmptyDay(t *testing.T) {
	templates := new(mockTemplateStore)
	overrides := new(mockOverrideStore)

	// Воскресенье без шаблона
	sunday := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	addStart, addEnd := "10:00", "12:00"

	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 0).
		Return([]*model.WeeklyTemplate{}, nil)
	overrides.On("GetByInstructorInRange", mock.Anything, int64(1), sunday, sunday).
		Return([]*model.AvailabilityOverride{
			{
				ID: 1, InstructorID: 1,
				StartDate: sunday, EndDate: sunday,
				StartTime: &addStart, EndTime: &addEnd,
				IsAvailable:      true,
				RequiresApproval: true,
			},
		}, nil)

	svc := newAvailabilityService(templates, overrides)

	blocks, err := svc.ResolveBlocks(context.Background(), 1, sunday, sunday, time.UTC)
	require.NoError(t, err)

	day := blocks["2025-06-01"]
	require.Len(t, day, 1)
	assert.Equal(t, "10:00", day[0].StartTime)
	assert.Equal(t, "12:00", day[0].EndTime)
	assert.True(t, day[0].RequiresApproval)
}

func TestResolveBlocksMultiDayOverrideAppliesPerDay(t *testing.T) {
	templates := new(mockTemplateStore)
	overrides := new(mockOverrideStore)

	tuesday := testMonday.AddDate(0, 0, 1)

	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 1).
		Return([]*model.WeeklyTemplate{mondayTemplate(10)}, nil)
	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 2).
		Return([]*model.WeeklyTemplate{
			{ID: 11, InstructorID: 1, DayOfWeek: 2, StartTime: "10:00", EndTime: "14:00", IsActive: true},
		}, nil)
	// Отпуск накрывает только понедельник
	overrides.On("GetByInstructorInRange", mock.Anything, int64(1), testMonday, tuesday).
		Return([]*model.AvailabilityOverride{
			{ID: 1, InstructorID: 1, StartDate: testMonday, EndDate: testMonday, IsAvailable: false},
		}, nil)

	svc := newAvailabilityService(templates, overrides)

	blocks, err := svc.ResolveBlocks(context.Background(), 1, testMonday, tuesday, time.UTC)
	require.NoError(t, err)

	assert.Empty(t, blocks["2025-06-02"])
	require.Len(t, blocks["2025-06-03"], 1)
	assert.Equal(t, "10:00", blocks["2025-06-03"][0].StartTime)
}

// dateRangeOverrideStore повторяет предикат хранилища по датам:
// start_date/end_date хранятся полуночами и сравниваются как моменты
type dateRangeOverrideStore struct {
	overrides []*model.AvailabilityOverride
}

func (s *dateRangeOverrideStore) GetByInstructorInRange(_ context.Context, _ int64, from, to time.Time) ([]*model.AvailabilityOverride, error) {
	var out []*model.AvailabilityOverride
	for _, o := range s.overrides {
		if !o.StartDate.After(to) && !o.EndDate.Before(from) {
			out = append(out, o)
		}
	}
	return out, nil
}

func TestResolveBlocksMidDayInstantSeesSameDayOverride(t *testing.T) {
	templates := new(mockTemplateStore)
	store := &dateRangeOverrideStore{overrides: []*model.AvailabilityOverride{
		{ID: 1, InstructorID: 1, StartDate: testMonday, EndDate: testMonday, IsAvailable: false},
	}}

	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 1).
		Return([]*model.WeeklyTemplate{mondayTemplate(10)}, nil)

	svc := NewAvailabilityService(templates, store, zap.NewNop())

	// Диапазон задан моментом внутри дня - блокировка всего дня,
	// заканчивающаяся этим же днём, всё равно должна примениться
	afternoon := testMonday.Add(14 * time.Hour)
	blocks, err := svc.ResolveBlocks(context.Background(), 1, afternoon, afternoon, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, blocks["2025-06-02"])
}

func TestResolveBlocksDeterministic(t *testing.T) {
	templates := new(mockTemplateStore)
	overrides := new(mockOverrideStore)

	cut1s, cut1e := "09:00", "10:00"
	cut2s, cut2e := "16:00", "17:00"

	templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 1).
		Return([]*model.WeeklyTemplate{mondayTemplate(10)}, nil)
	// Порядок в ответе хранилища обратный порядку создания
	overrides.On("GetByInstructorInRange", mock.Anything, int64(1), testMonday, testMonday).
		Return([]*model.AvailabilityOverride{
			{
				ID: 2, InstructorID: 1,
				StartDate: testMonday, EndDate: testMonday,
				StartTime: &cut2s, EndTime: &cut2e,
				IsAvailable: false,
				CreatedAt:   testMonday.Add(time.Hour),
			},
			{
				ID: 1, InstructorID: 1,
				StartDate: testMonday, EndDate: testMonday,
				StartTime: &cut1s, EndTime: &cut1e,
				IsAvailable: false,
				CreatedAt:   testMonday,
			},
		}, nil)

	svc := newAvailabilityService(templates, overrides)

	first, err := svc.ResolveBlocks(context.Background(), 1, testMonday, testMonday, time.UTC)
	require.NoError(t, err)
	second, err := svc.ResolveBlocks(context.Background(), 1, testMonday, testMonday, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	day := first["2025-06-02"]
	require.Len(t, day, 1)
	assert.Equal(t, "10:00", day[0].StartTime)
	assert.Equal(t, "16:00", day[0].EndTime)
}
