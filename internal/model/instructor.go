package model

import (
	"time"
)

type Instructor struct {
	ID                      int64      `json:"id"`
	Name                    string     `json:"name"`
	Timezone                string     `json:"timezone"` // IANA зона, фиксированная для инструктора
	TelegramChatID          *int64     `json:"telegram_chat_id"` // указатель - может быть nil
	CalendarBlockingEnabled bool       `json:"calendar_blocking_enabled"` // учитывать занятость из внешнего календаря
	CalendarConnected       bool       `json:"calendar_connected"`
	GoogleCalendarID        string     `json:"google_calendar_id"`
	GoogleToken             *string    `json:"-"` // OAuth токен в JSON, nil = не подключен
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               *time.Time `json:"updated_at"`
}

// Location загружает таймзону инструктора
func (i *Instructor) Location() (*time.Location, error) {
	return time.LoadLocation(i.Timezone)
}

// UsesCalendarBlocking проверяет что внешний календарь подключен и блокировка включена
func (i *Instructor) UsesCalendarBlocking() bool {
	return i.CalendarBlockingEnabled && i.CalendarConnected
}
