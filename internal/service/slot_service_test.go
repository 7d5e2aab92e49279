package service

import (
	"context"
	"testing"
	"time"

	"github.com/sgurkov/lesson_booking/internal/calendar"
	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type slotFixture struct {
	instructors  *mockInstructorStore
	types        *mockTypeStore
	templates    *mockTemplateStore
	overrides    *mockOverrideStore
	appointments *mockAppointmentStore
	courses      *mockCourseStore
	calendar     *mockCalendar
	svc          *SlotService
}

func newSlotFixture() *slotFixture {
	f := &slotFixture{
		instructors:  new(mockInstructorStore),
		types:        new(mockTypeStore),
		templates:    new(mockTemplateStore),
		overrides:    new(mockOverrideStore),
		appointments: new(mockAppointmentStore),
		courses:      new(mockCourseStore),
		calendar:     new(mockCalendar),
	}

	logger := zap.NewNop()
	availability := NewAvailabilityService(f.templates, f.overrides, logger)
	conflicts := NewConflictService(f.appointments, f.courses, f.calendar, logger)
	f.svc = NewSlotService(f.instructors, f.types, availability, conflicts, logger)
	return f
}

func utcInstructor() *model.Instructor {
	return &model.Instructor{ID: 1, Name: "Анна", Timezone: "UTC"}
}

func fixedType(minutes int) *model.AppointmentType {
	return &model.AppointmentType{
		ID:              5,
		InstructorID:    1,
		Title:           "Индивидуальное занятие",
		DurationMinutes: &minutes,
		IsActive:        true,
	}
}

func (f *slotFixture) expectMondayBlock() {
	f.templates.On("GetActiveByInstructorAndDay", mock.Anything, int64(1), 1).
		Return([]*model.WeeklyTemplate{mondayTemplate(10)}, nil)
	f.overrides.On("GetByInstructorInRange", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]*model.AvailabilityOverride{}, nil)
}

func (f *slotFixture) expectNoConflicts() {
	f.appointments.On("GetActiveByInstructorInRange", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]*model.Appointment{}, nil)
	f.courses.On("GetSessionsByInstructorInRange", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]*model.CourseSession{}, nil)
}

func TestGenerateSlotsFullDay(t *testing.T) {
	f := newSlotFixture()

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(utcInstructor(), nil)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(fixedType(60), nil)
	f.expectMondayBlock()
	f.expectNoConflicts()

	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 60)
	require.NoError(t, err)

	// 09:00-17:00 по часу - ровно восемь слотов
	require.Len(t, slots, 8)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC), slots[7].StartTime)
	assert.Equal(t, time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC), slots[7].EndTime)

	for _, s := range slots {
		assert.True(t, s.IsAvailable)
		assert.Empty(t, s.Reason)
	}
}

func TestGenerateSlotsNoPartialTrailingSlot(t *testing.T) {
	f := newSlotFixture()

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(utcInstructor(), nil)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(fixedType(90), nil)
	f.expectMondayBlock()
	f.expectNoConflicts()

	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 90)
	require.NoError(t, err)

	// 8 часов по 90 минут: последний целиком влезающий слот 15:00-16:30,
	// хвост 16:30-17:00 не выдаётся
	require.Len(t, slots, 5)
	last := slots[len(slots)-1]
	assert.Equal(t, time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC), last.StartTime)
	assert.Equal(t, time.Date(2025, 6, 2, 16, 30, 0, 0, time.UTC), last.EndTime)
}

func TestGenerateSlotsWestOfUTCKeepsRequestedDates(t *testing.T) {
	f := newSlotFixture()

	instructor := utcInstructor()
	instructor.Timezone = "America/New_York"

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(instructor, nil)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(fixedType(60), nil)
	f.expectMondayBlock()
	f.expectNoConflicts()

	// Даты запроса распарсены как полуночи UTC; день инструктора - всё равно
	// понедельник 2 июня, а не предыдущее воскресенье
	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 60)
	require.NoError(t, err)

	// 09:00-17:00 Нью-Йорка (EDT, UTC-4)
	require.Len(t, slots, 8)
	assert.Equal(t, time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC), slots[7].EndTime)
}

func TestGenerateSlotsConflictMarksUnavailable(t *testing.T) {
	f := newSlotFixture()

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(utcInstructor(), nil)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(fixedType(60), nil)
	f.expectMondayBlock()

	f.appointments.On("GetActiveByInstructorInRange", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]*model.Appointment{
			{
				ID:           77,
				InstructorID: 1,
				StartTime:    time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
				EndTime:      time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
				Status:       model.AppointmentStatusConfirmed,
			},
		}, nil)
	f.courses.On("GetSessionsByInstructorInRange", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]*model.CourseSession{}, nil)

	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 60)
	require.NoError(t, err)
	require.Len(t, slots, 8)

	// Занят ровно слот 10:00-11:00, соседние не задеты
	assert.True(t, slots[0].IsAvailable)  // 09:00
	assert.False(t, slots[1].IsAvailable) // 10:00
	assert.Equal(t, SlotUnavailableReason, slots[1].Reason)
	assert.True(t, slots[2].IsAvailable) // 11:00
}

func TestGenerateSlotsExternalBusyMarksUnavailable(t *testing.T) {
	f := newSlotFixture()

	instructor := utcInstructor()
	instructor.CalendarBlockingEnabled = true
	instructor.CalendarConnected = true

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(instructor, nil)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(fixedType(60), nil)
	f.expectMondayBlock()
	f.expectNoConflicts()

	f.calendar.On("GetBusyIntervals", mock.Anything, instructor, mock.Anything, mock.Anything).
		Return([]calendar.BusyInterval{
			{
				Start: time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC),
				Label: "Dentist",
			},
		}, nil)

	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 60)
	require.NoError(t, err)
	require.Len(t, slots, 8)

	assert.False(t, slots[5].IsAvailable) // 14:00
	assert.True(t, slots[4].IsAvailable)
	assert.True(t, slots[6].IsAvailable)
}

func TestGenerateSlotsCalendarFailureDegradesGracefully(t *testing.T) {
	f := newSlotFixture()

	instructor := utcInstructor()
	instructor.CalendarBlockingEnabled = true
	instructor.CalendarConnected = true

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(instructor, nil)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(fixedType(60), nil)
	f.expectMondayBlock()
	f.expectNoConflicts()

	f.calendar.On("GetBusyIntervals", mock.Anything, instructor, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	// Сбой календаря не валит выдачу, слоты считаются без внешней занятости
	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 60)
	require.NoError(t, err)
	require.Len(t, slots, 8)
	for _, s := range slots {
		assert.True(t, s.IsAvailable)
	}
}

func TestGenerateSlotsInactiveTypeYieldsNothing(t *testing.T) {
	f := newSlotFixture()

	inactive := fixedType(60)
	inactive.IsActive = false

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(utcInstructor(), nil)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(inactive, nil)

	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 60)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsForeignTypeYieldsNothing(t *testing.T) {
	f := newSlotFixture()

	foreign := fixedType(60)
	foreign.InstructorID = 999

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(utcInstructor(), nil)
	f.types.On("GetByID", mock.Anything, int64(5)).Return(foreign, nil)

	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 60)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsUnknownInstructorYieldsNothing(t *testing.T) {
	f := newSlotFixture()

	f.instructors.On("GetByID", mock.Anything, int64(1)).Return(nil, nil)

	slots, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 60)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsRejectsNonPositiveDuration(t *testing.T) {
	f := newSlotFixture()

	_, err := f.svc.GenerateSlots(context.Background(), 1, 5, testMonday, testMonday, 0)
	assert.Error(t, err)
}
