package timeutil

import (
	"fmt"
	"time"
)

// Span интервал внутри суток в минутах от полуночи, полуоткрытый [Start, End)
type Span struct {
	Start int
	End   int
}

// ParseWallClock разбирает время вида "HH:MM" в минуты от полуночи
func ParseWallClock(s string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("parse wall clock %q: %w", s, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("parse wall clock %q: out of range", s)
	}

	return hour*60 + minute, nil
}

// FormatWallClock форматирует минуты от полуночи обратно в "HH:MM"
func FormatWallClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd).
// Интервалы встык (aEnd == bStart) не пересекаются - это позволяет бронировать занятия подряд.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// SpansOverlap то же самое для интервалов в минутах
func SpansOverlap(a, b Span) bool {
	return a.Start < b.End && b.Start < a.End
}

// Subtract вычитает окно remove из span.
// Возвращает 0, 1 или 2 оставшихся куска:
//   - не пересекаются: исходный span целиком
//   - remove накрывает span: пусто
//   - remove задевает один край: один остаток
//   - remove строго внутри: два остатка (split)
func Subtract(span, remove Span) []Span {
	if !SpansOverlap(span, remove) {
		return []Span{span}
	}

	var result []Span

	if remove.Start > span.Start {
		result = append(result, Span{Start: span.Start, End: remove.Start})
	}

	if remove.End < span.End {
		result = append(result, Span{Start: remove.End, End: span.End})
	}

	return result
}

// LocalWallClockToUTC переводит локальное время "HH:MM" в конкретный UTC-момент
// для указанной даты (год-месяц-день берутся в loc).
//
// На днях перевода часов полагаемся на нормализацию time.Date: время внутри
// "весеннего" провала сдвигается вперёд, неоднозначное "осеннее" время
// разрешается детерминированно стандартной библиотекой.
func LocalWallClockToUTC(day time.Time, wallClock string, loc *time.Location) (time.Time, error) {
	minutes, err := ParseWallClock(wallClock)
	if err != nil {
		return time.Time{}, err
	}

	local := day.In(loc)
	t := time.Date(local.Year(), local.Month(), local.Day(), minutes/60, minutes%60, 0, 0, loc)
	return t.UTC(), nil
}

// ToLocalWallClock переводит UTC-момент в локальное "HH:MM"
func ToLocalWallClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// DateKey ключ дня в локальной зоне, "2006-01-02"
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// AsLocalDate перечитывает календарную дату t (год-месяц-день в зоне самого t)
// как полночь той же даты в loc. Зона, в которой вызывающий распарсил дату,
// при этом не влияет на результат.
func AsLocalDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween возвращает полночь каждого календарного дня в loc
// от startDate до endDate включительно
func DaysBetween(startDate, endDate time.Time, loc *time.Location) []time.Time {
	start := startOfDay(startDate, loc)
	end := startOfDay(endDate, loc)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	return days
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
