package reminder

import (
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

// InQuietHours reports whether now falls inside q. Windows may wrap past
// midnight; the end minute is exclusive. Disabled, malformed or empty
// windows are never quiet.
func InQuietHours(q model.QuietHours, now time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, ok := parseClock(q.Start)
	if !ok {
		return false
	}
	end, ok := parseClock(q.End)
	if !ok || start == end {
		return false
	}
	m := minuteOfDay(now)
	if start < end {
		return m >= start && m < end
	}
	return m >= start || m < end
}
