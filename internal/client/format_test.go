package client

import (
	"testing"
	"time"
)

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "same instant", t: now, want: "Hoy"},
		{name: "one hour ago", t: now.Add(-time.Hour), want: "Hoy"},
		{name: "exactly one day", t: now.Add(-24 * time.Hour), want: "Hoy"},
		{name: "just over one day", t: now.Add(-25 * time.Hour), want: "Ayer"},
		{name: "exactly two days", t: now.Add(-48 * time.Hour), want: "Ayer"},
		{name: "three days", t: now.Add(-60 * time.Hour), want: "Hace 2 días"},
		{name: "seven days", t: now.Add(-7 * 24 * time.Hour), want: "Hace 6 días"},
		{name: "over a week", t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), want: "1 mar 2024"},
		{name: "previous year", t: time.Date(2023, 12, 25, 9, 0, 0, 0, time.UTC), want: "25 dic 2023"},
		{name: "future is symmetric", t: now.Add(30 * time.Hour), want: "Ayer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelative(tt.t, now); got != tt.want {
				t.Errorf("FormatRelative() = %q, want %q", got, tt.want)
			}
		})
	}
}
