package reminder

import (
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

// MoodWindows are the daily check-in windows, ordered by start time.
var MoodWindows = []MoodWindow{
	{ID: "noon", MinuteOfDay: 12 * 60, Label: "window.noon"},
	{ID: "afternoon", MinuteOfDay: 17 * 60, Label: "window.afternoon"},
	{ID: "night", MinuteOfDay: 20 * 60, Label: "window.night"},
}

// EvaluateMood finds the latest window that has opened and whether a mood
// has been logged today.
func EvaluateMood(s model.Snapshot, now time.Time) MoodContext {
	day := dayKey(now)
	var c MoodContext
	for _, m := range s.Moods {
		if m.Date == day {
			c.HasMoodToday = true
			break
		}
	}

	nowMin := minuteOfDay(now)
	for i := range MoodWindows {
		if MoodWindows[i].MinuteOfDay <= nowMin {
			w := MoodWindows[i]
			c.ActiveWindow = &w
		}
	}
	c.NeedsReminder = !c.HasMoodToday && c.ActiveWindow != nil
	return c
}

// MoodLevel rises with later check-in windows.
func MoodLevel(c MoodContext) Level {
	if c.ActiveWindow == nil {
		return LevelGentle
	}
	switch c.ActiveWindow.ID {
	case "night":
		return LevelUrgent
	case "afternoon":
		return LevelNudge
	}
	return LevelGentle
}

// MoodInterval is nominal: mood slots are keyed by window, not by bucket.
func MoodInterval() int {
	return 1
}
