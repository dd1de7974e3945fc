package client

import (
	"fmt"
	"math"
	"time"
)

var monthsES = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// FormatRelative renders t relative to now in Spanish: "Hoy", "Ayer",
// "Hace N días" within a week, otherwise a short calendar date.
func FormatRelative(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))
	switch {
	case days <= 1:
		return "Hoy"
	case days == 2:
		return "Ayer"
	case days <= 7:
		return fmt.Sprintf("Hace %d días", days-1)
	}
	local := t.In(now.Location())
	return fmt.Sprintf("%d %s %d", local.Day(), monthsES[local.Month()-1], local.Year())
}
