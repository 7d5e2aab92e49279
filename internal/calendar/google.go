package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sgurkov/lesson_booking/internal/model"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendar бэкенд поверх Google Calendar API.
// Токен OAuth хранится у инструктора, клиент собирается на каждый вызов.
type GoogleCalendar struct {
	config *oauth2.Config
	logger *zap.Logger
}

// NewGoogleCalendar создаёт бэкенд из credentials JSON (OAuth client)
func NewGoogleCalendar(credentialsJSON []byte, logger *zap.Logger) (*GoogleCalendar, error) {
	config, err := google.ConfigFromJSON(credentialsJSON, gcalendar.CalendarEventsScope, gcalendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}

	return &GoogleCalendar{
		config: config,
		logger: logger,
	}, nil
}

// serviceFor собирает API-клиент под токен конкретного инструктора
func (g *GoogleCalendar) serviceFor(ctx context.Context, instructor *model.Instructor) (*gcalendar.Service, error) {
	if instructor.GoogleToken == nil || !instructor.CalendarConnected {
		return nil, ErrNotConnected
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(*instructor.GoogleToken), &token); err != nil {
		return nil, fmt.Errorf("unmarshal instructor token: %w", err)
	}

	client := g.config.Client(ctx, &token)
	service, err := gcalendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return service, nil
}

func (g *GoogleCalendar) calendarID(instructor *model.Instructor) string {
	if instructor.GoogleCalendarID != "" {
		return instructor.GoogleCalendarID
	}
	return "primary"
}

// GetBusyIntervals запрашивает занятость через freebusy
func (g *GoogleCalendar) GetBusyIntervals(ctx context.Context, instructor *model.Instructor, from, to time.Time) ([]BusyInterval, error) {
	service, err := g.serviceFor(ctx, instructor)
	if err != nil {
		if err == ErrNotConnected {
			return nil, nil
		}
		return nil, err
	}

	calendarID := g.calendarID(instructor)
	response, err := service.Freebusy.Query(&gcalendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*gcalendar.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()

	if err != nil {
		return nil, fmt.Errorf("freebusy query: %w", err)
	}

	var intervals []BusyInterval
	for _, cal := range response.Calendars {
		for _, busy := range cal.Busy {
			start, err := time.Parse(time.RFC3339, busy.Start)
			if err != nil {
				g.logger.Warn("Unparseable busy interval start, skipping",
					zap.Int64("instructor_id", instructor.ID),
					zap.String("start", busy.Start))
				continue
			}
			end, err := time.Parse(time.RFC3339, busy.End)
			if err != nil {
				g.logger.Warn("Unparseable busy interval end, skipping",
					zap.Int64("instructor_id", instructor.ID),
					zap.String("end", busy.End))
				continue
			}

			intervals = append(intervals, BusyInterval{
				Start: start.UTC(),
				End:   end.UTC(),
			})
		}
	}

	return intervals, nil
}

// CheckConflict ищет события календаря, пересекающие [start, end)
func (g *GoogleCalendar) CheckConflict(ctx context.Context, instructor *model.Instructor, start, end time.Time) (ConflictCheck, error) {
	service, err := g.serviceFor(ctx, instructor)
	if err != nil {
		if err == ErrNotConnected {
			return ConflictCheck{}, nil
		}
		return ConflictCheck{}, err
	}

	events, err := service.Events.List(g.calendarID(instructor)).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		MaxResults(5).
		Context(ctx).
		Do()

	if err != nil {
		return ConflictCheck{}, fmt.Errorf("list events: %w", err)
	}

	for _, event := range events.Items {
		// Целодневные события (без DateTime) занятость не блокируют
		if event.Start == nil || event.Start.DateTime == "" {
			continue
		}
		return ConflictCheck{
			HasConflict:      true,
			ConflictingEvent: event.Summary,
		}, nil
	}

	return ConflictCheck{}, nil
}

// CreateEvent зеркалит бронирование в календарь инструктора
func (g *GoogleCalendar) CreateEvent(ctx context.Context, instructor *model.Instructor, event Event) (string, error) {
	service, err := g.serviceFor(ctx, instructor)
	if err != nil {
		return "", err
	}

	created, err := service.Events.Insert(g.calendarID(instructor), &gcalendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Start:       &gcalendar.EventDateTime{DateTime: event.Start.Format(time.RFC3339)},
		End:         &gcalendar.EventDateTime{DateTime: event.End.Format(time.RFC3339)},
	}).Context(ctx).Do()

	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}

	return created.Id, nil
}

// UpdateEvent обновляет зеркальное событие
func (g *GoogleCalendar) UpdateEvent(ctx context.Context, instructor *model.Instructor, eventID string, event Event) error {
	service, err := g.serviceFor(ctx, instructor)
	if err != nil {
		return err
	}

	_, err = service.Events.Update(g.calendarID(instructor), eventID, &gcalendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Start:       &gcalendar.EventDateTime{DateTime: event.Start.Format(time.RFC3339)},
		End:         &gcalendar.EventDateTime{DateTime: event.End.Format(time.RFC3339)},
	}).Context(ctx).Do()

	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	return nil
}

// DeleteEvent удаляет зеркальное событие
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, instructor *model.Instructor, eventID string) error {
	service, err := g.serviceFor(ctx, instructor)
	if err != nil {
		return err
	}

	if err := service.Events.Delete(g.calendarID(instructor), eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	return nil
}
