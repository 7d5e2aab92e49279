package service

import (
	"context"
	"time"

	"github.com/sgurkov/lesson_booking/internal/calendar"
	"github.com/sgurkov/lesson_booking/internal/model"
	"github.com/stretchr/testify/mock"
)

type mockInstructorStore struct {
	mock.Mock
}

func (m *mockInstructorStore) GetByID(ctx context.Context, id int64) (*model.Instructor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Instructor), args.Error(1)
}

type mockTypeStore struct {
	mock.Mock
}

func (m *mockTypeStore) GetByID(ctx context.Context, id int64) (*model.AppointmentType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AppointmentType), args.Error(1)
}

func (m *mockTypeStore) GetActiveByInstructorID(ctx context.Context, instructorID int64) ([]*model.AppointmentType, error) {
	args := m.Called(ctx, instructorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AppointmentType), args.Error(1)
}

type mockTemplateStore struct {
	mock.Mock
}

func (m *mockTemplateStore) GetActiveByInstructorAndDay(ctx context.Context, instructorID int64, dayOfWeek int) ([]*model.WeeklyTemplate, error) {
	args := m.Called(ctx, instructorID, dayOfWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WeeklyTemplate), args.Error(1)
}

type mockOverrideStore struct {
	mock.Mock
}

func (m *mockOverrideStore) GetByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.AvailabilityOverride, error) {
	args := m.Called(ctx, instructorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AvailabilityOverride), args.Error(1)
}

type mockAppointmentStore struct {
	mock.Mock
}

func (m *mockAppointmentStore) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *mockAppointmentStore) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockAppointmentStore) GetActiveByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.Appointment, error) {
	args := m.Called(ctx, instructorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Appointment), args.Error(1)
}

func (m *mockAppointmentStore) HasConflicting(ctx context.Context, instructorID int64, start, end time.Time, excludeID *int64) (bool, error) {
	args := m.Called(ctx, instructorID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAppointmentStore) GetPendingByInstructorID(ctx context.Context, instructorID int64) ([]*model.Appointment, error) {
	args := m.Called(ctx, instructorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Appointment), args.Error(1)
}

func (m *mockAppointmentStore) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockAppointmentStore) UpdateTimes(ctx context.Context, id int64, start, end time.Time) error {
	return m.Called(ctx, id, start, end).Error(0)
}

func (m *mockAppointmentStore) Cancel(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockAppointmentStore) SetExternalEventID(ctx context.Context, id int64, eventID string) error {
	return m.Called(ctx, id, eventID).Error(0)
}

func (m *mockAppointmentStore) CompleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockCourseStore struct {
	mock.Mock
}

func (m *mockCourseStore) GetSessionsByInstructorInRange(ctx context.Context, instructorID int64, from, to time.Time) ([]*model.CourseSession, error) {
	args := m.Called(ctx, instructorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CourseSession), args.Error(1)
}

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) GetBusyIntervals(ctx context.Context, instructor *model.Instructor, from, to time.Time) ([]calendar.BusyInterval, error) {
	args := m.Called(ctx, instructor, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]calendar.BusyInterval), args.Error(1)
}

func (m *mockCalendar) CheckConflict(ctx context.Context, instructor *model.Instructor, start, end time.Time) (calendar.ConflictCheck, error) {
	args := m.Called(ctx, instructor, start, end)
	return args.Get(0).(calendar.ConflictCheck), args.Error(1)
}

func (m *mockCalendar) CreateEvent(ctx context.Context, instructor *model.Instructor, event calendar.Event) (string, error) {
	args := m.Called(ctx, instructor, event)
	return args.String(0), args.Error(1)
}

func (m *mockCalendar) UpdateEvent(ctx context.Context, instructor *model.Instructor, eventID string, event calendar.Event) error {
	return m.Called(ctx, instructor, eventID, event).Error(0)
}

func (m *mockCalendar) DeleteEvent(ctx context.Context, instructor *model.Instructor, eventID string) error {
	return m.Called(ctx, instructor, eventID).Error(0)
}

// recordingNotifier запоминает какие уведомления ушли
type recordingNotifier struct {
	created   int
	approved  int
	rejected  int
	cancelled int
}

func (n *recordingNotifier) BookingCreated(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, appointmentType *model.AppointmentType) {
	n.created++
}

func (n *recordingNotifier) BookingApproved(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment) {
	n.approved++
}

func (n *recordingNotifier) BookingRejected(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment) {
	n.rejected++
}

func (n *recordingNotifier) BookingCancelled(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, reason string) {
	n.cancelled++
}
