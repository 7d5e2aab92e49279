package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWallClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"12:30", 750, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"garbage", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseWallClock(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestFormatWallClockRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "12:30", "23:59"} {
		minutes, err := ParseWallClock(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatWallClock(minutes))
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	at := func(m int) time.Time { return base.Add(time.Duration(m) * time.Minute) }

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", at(0), at(60), at(0), at(60), true},
		{"partial overlap", at(0), at(60), at(30), at(90), true},
		{"contained", at(0), at(120), at(30), at(60), true},
		{"disjoint", at(0), at(60), at(120), at(180), false},
		{"back to back", at(0), at(60), at(60), at(120), false},
		{"back to back reversed", at(60), at(120), at(0), at(60), false},
		{"one minute overlap", at(0), at(61), at(60), at(120), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestSubtract(t *testing.T) {
	block := Span{Start: 540, End: 1020} // 09:00-17:00

	tests := []struct {
		name   string
		remove Span
		want   []Span
	}{
		{
			name:   "disjoint is a no-op",
			remove: Span{Start: 1020, End: 1080},
			want:   []Span{{Start: 540, End: 1020}},
		},
		{
			name:   "removal covers whole block",
			remove: Span{Start: 480, End: 1080},
			want:   nil,
		},
		{
			name:   "removal touches start",
			remove: Span{Start: 480, End: 600},
			want:   []Span{{Start: 600, End: 1020}},
		},
		{
			name:   "removal touches end",
			remove: Span{Start: 960, End: 1080},
			want:   []Span{{Start: 540, End: 960}},
		},
		{
			name:   "interior removal splits in two",
			remove: Span{Start: 720, End: 780}, // 12:00-13:00
			want:   []Span{{Start: 540, End: 720}, {Start: 780, End: 1020}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subtract(block, tt.remove))
		})
	}
}

func TestSubtractInteriorReconstructsOriginal(t *testing.T) {
	block := Span{Start: 540, End: 1020}
	remove := Span{Start: 720, End: 780}

	pieces := Subtract(block, remove)
	require.Len(t, pieces, 2)

	// Куски плюс вырезанный промежуток восстанавливают исходный блок
	assert.Equal(t, block.Start, pieces[0].Start)
	assert.Equal(t, remove.Start, pieces[0].End)
	assert.Equal(t, remove.End, pieces[1].Start)
	assert.Equal(t, block.End, pieces[1].End)
}

func TestLocalWallClockToUTC(t *testing.T) {
	moscow, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, moscow)

	got, err := LocalWallClockToUTC(day, "12:00", moscow)
	require.NoError(t, err)

	// Москва UTC+3 круглый год
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), got)
	assert.Equal(t, "12:00", ToLocalWallClock(got, moscow))
}

func TestLocalWallClockToUTCAcrossDST(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// День перевода на летнее время: 2025-03-09, 02:00-03:00 не существует
	springForward := time.Date(2025, 3, 9, 0, 0, 0, 0, newYork)

	before, err := LocalWallClockToUTC(springForward, "01:00", newYork)
	require.NoError(t, err)
	after, err := LocalWallClockToUTC(springForward, "04:00", newYork)
	require.NoError(t, err)

	// 01:00 EST -> 04:00 EDT реальных два часа, а не три
	assert.Equal(t, 2*time.Hour, after.Sub(before))

	// Время из провала нормализуется вперёд детерминированно
	gap, err := LocalWallClockToUTC(springForward, "02:30", newYork)
	require.NoError(t, err)
	assert.Equal(t, "03:30", ToLocalWallClock(gap, newYork))

	// Обычное время в тот же день конвертируется точно
	noon, err := LocalWallClockToUTC(springForward, "12:00", newYork)
	require.NoError(t, err)
	assert.Equal(t, "12:00", ToLocalWallClock(noon, newYork))
}

func TestAsLocalDate(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Дата распарсена как полночь UTC; в Нью-Йорке это ещё предыдущий день,
	// но календарная дата должна сохраниться
	parsed := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	local := AsLocalDate(parsed, newYork)

	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, newYork), local)

	days := DaysBetween(local, local, newYork)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-09-01", days[0].Format("2006-01-02"))
}

func TestDaysBetween(t *testing.T) {
	utc := time.UTC

	days := DaysBetween(
		time.Date(2025, 6, 2, 15, 30, 0, 0, utc),
		time.Date(2025, 6, 4, 1, 0, 0, 0, utc),
		utc,
	)

	require.Len(t, days, 3)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, utc), days[0])
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, utc), days[1])
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, utc), days[2])
}

func TestDaysBetweenSingleDay(t *testing.T) {
	utc := time.UTC
	day := time.Date(2025, 6, 2, 10, 0, 0, 0, utc)

	days := DaysBetween(day, day, utc)
	require.Len(t, days, 1)
}
