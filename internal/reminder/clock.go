package reminder

import (
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

// parseClock parses a local "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func dayKey(t time.Time) string {
	return t.Format(model.DateLayout)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atMinute returns day's local midnight plus minutes.
func atMinute(day time.Time, minutes int) time.Time {
	d := startOfDay(day)
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, d.Location())
}

// daysBetween counts calendar days from a to b, ignoring clock time and DST.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
