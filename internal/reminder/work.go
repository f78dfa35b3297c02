package reminder

import (
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

// workStartHour is the earliest hour a work-log reminder is considered.
const workStartHour = 9

// EvaluateWork flags weekdays without an attendance record.
func EvaluateWork(s model.Snapshot, now time.Time) WorkContext {
	wd := now.Weekday()
	isWeekday := wd >= time.Monday && wd <= time.Friday
	_, has := s.Attendance[dayKey(now)]
	return WorkContext{
		IsWeekday:     isWeekday,
		HasAttendance: has,
		NeedsReminder: isWeekday && !has,
		Hour:          now.Hour(),
	}
}

// WorkLevel escalates as the workday goes on.
func WorkLevel(c WorkContext) Level {
	switch {
	case c.Hour >= 17:
		return LevelUrgent
	case c.Hour >= 11:
		return LevelNudge
	}
	return LevelGentle
}

// WorkInterval shortens as the level rises and the day goes on.
func WorkInterval(c WorkContext, level Level) int {
	switch level {
	case LevelUrgent:
		if c.Hour >= 19 {
			return 8
		}
		return 12
	case LevelNudge:
		if c.Hour >= 14 {
			return 20
		}
		return 25
	}
	return 40
}
