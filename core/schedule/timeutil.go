package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// HourFormat controls how MinutesToTime prints values past midnight.
type HourFormat int

const (
	// ElapsedHours prints the raw hour count: 1530 minutes is "25:30".
	ElapsedHours HourFormat = iota
	// Wrap24 folds the hour into a 24h clock: 1530 minutes is "01:30".
	Wrap24
)

// ParseHourFormat maps the config value to a HourFormat. Unknown values fall back to ElapsedHours.
func ParseHourFormat(s string) HourFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wrap24", "24h", "wrap":
		return Wrap24
	default:
		return ElapsedHours
	}
}

func (f HourFormat) String() string {
	if f == Wrap24 {
		return "wrap24"
	}
	return "elapsed"
}

// TimeToMinutes converts a "HH:MM" time of day into minutes since 00:00.
// Empty or malformed input yields 0. Anything after the minutes (e.g. seconds) is ignored.
func TimeToMinutes(t string) int {
	t = strings.TrimSpace(t)
	if t == "" {
		return 0
	}
	parts := strings.Split(t, ":")
	if len(parts) < 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return hours*60 + mins
}

// MinutesToTime formats minutes since 00:00 as a zero-padded "HH:MM".
func MinutesToTime(minutes int, format ...HourFormat) string {
	if len(format) > 0 && format[0] == Wrap24 {
		minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClockMinutes returns the minutes elapsed since 00:00 for t, ignoring seconds.
func ClockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
