// Package format renders prices, durations and times the same way in the
// TUI and the CLI.
package format

import (
	"fmt"
	"time"
)

const (
	dayLayout  = "Mon 02 Jan 2006"
	whenLayout = "Mon 02 Jan 2006 15:04"
)

// Price renders an amount without trailing zeros for whole values.
func Price(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}

// Duration renders minutes as "45m" or "1h 30m". Non-positive values are empty.
func Duration(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// Day renders a calendar day.
func Day(d time.Time) string {
	return d.Format(dayLayout)
}

// When renders an instant in loc, or "-" for the zero time.
func When(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format(whenLayout)
}
