package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWasNotifiedToday(t *testing.T) {
	utc := time.UTC
	now := time.Date(2024, 1, 5, 13, 30, 0, 0, utc)

	ts := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name string
		last *time.Time
		want bool
	}{
		{
			name: "never notified",
			last: nil,
			want: false,
		},
		{
			name: "this morning",
			last: ts(time.Date(2024, 1, 5, 0, 0, 1, 0, utc)),
			want: true,
		},
		{
			name: "later today",
			last: ts(time.Date(2024, 1, 5, 23, 59, 59, 0, utc)),
			want: true,
		},
		{
			name: "yesterday evening, under 24h ago",
			last: ts(time.Date(2024, 1, 4, 23, 0, 0, 0, utc)),
			want: false,
		},
		{
			name: "previous day",
			last: ts(time.Date(2024, 1, 4, 13, 30, 0, 0, utc)),
			want: false,
		},
		{
			name: "same day last month",
			last: ts(time.Date(2023, 12, 5, 13, 30, 0, 0, utc)),
			want: false,
		},
		{
			name: "same day last year",
			last: ts(time.Date(2023, 1, 5, 13, 30, 0, 0, utc)),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WasNotifiedToday(tt.last, now, utc))
		})
	}
}

func TestWasNotifiedTodayUsesConfiguredLocation(t *testing.T) {
	helsinki := time.FixedZone("EET", 2*60*60)

	// 23:30 UTC on Jan 4 is already Jan 5 in EET.
	last := time.Date(2024, 1, 4, 23, 30, 0, 0, time.UTC)
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	assert.False(t, WasNotifiedToday(&last, now, time.UTC))
	assert.True(t, WasNotifiedToday(&last, now, helsinki))
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2024, 1, 5, 18, 45, 12, 999, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), got)
}
