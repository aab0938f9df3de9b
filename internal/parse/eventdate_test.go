package parse

import (
	"testing"
	"time"

	"github.com/fightcard/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	june7 := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want *time.Time
	}{
		{"iso", "2025-06-07", &june7},
		{"long month", "June 7, 2025", &june7},
		{"zero padded day", "June 07, 2025", &june7},
		{"short month", "Jun 7, 2025", &june7},
		{"ordinal", "June 7th, 2025", &june7},
		{"weekday prefix", "Saturday, June 7, 2025", &june7},
		{"us slash", "06/07/2025", &june7},
		{"rfc3339 keeps the day", "2025-06-07T22:00:00Z", &june7},
		{"empty", "", nil},
		{"garbage", "to be announced", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEventDate(tt.text, now)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestParseEventDate_NaturalLanguage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := ParseEventDate("tomorrow", now)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), *got)
}

func TestParseEventDate_KeepsWrittenYear(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	june14 := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
	}{
		{"plain", "June 14, 2025"},
		{"ordinal with time", "June 14th, 2025 at 10:00 PM"},
		{"short month with time", "Jun 14, 2025 10:00 PM"},
		{"time zone suffix", "June 14, 2025 10:00 PM EDT"},
		{"hour only", "June 14, 2025 10 PM ET"},
		{"bracketed note", "Saturday, June 14, 2025 (10 PM ET)"},
		{"square bracket note", "June 14, 2025 [main card]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEventDate(tt.text, now)
			require.NotNil(t, got)
			assert.Equal(t, june14, *got)

			event := &domain.Event{EventDate: got}
			assert.True(t, event.ConcludedAt(now))
		})
	}
}

func TestPinWrittenYear(t *testing.T) {
	day := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name string
		in   *time.Time
		text string
		want *time.Time
	}{
		{"no year in text", day(2026, 6, 14), "June 14", day(2026, 6, 14)},
		{"same year", day(2025, 6, 14), "June 14 2025", day(2025, 6, 14)},
		{"inferred year replaced", day(2026, 6, 14), "June 14 2025 main card", day(2025, 6, 14)},
		{"leap day onto common year", day(2028, 2, 29), "Feb 29 2027", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pinWrittenYear(tt.in, tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}
