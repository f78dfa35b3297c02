package reminder

import (
	"sort"
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

// defaultDoseTimes is used when a plan only says how many times per day.
var defaultDoseTimes = []string{"08:00", "13:00", "19:00", "22:00"}

// DoseTimes returns the clock times of a plan's daily doses.
func DoseTimes(p model.SupplementPlan) []string {
	if len(p.Times) > 0 {
		return p.Times
	}
	n := p.TimesPerDay
	if n <= 0 {
		return nil
	}
	if n > len(defaultDoseTimes) {
		n = len(defaultDoseTimes)
	}
	return defaultDoseTimes[:n]
}

func supplementName(id string, p model.SupplementPlan) string {
	if p.Name != "" {
		return p.Name
	}
	return id
}

// sortedSupplementIDs gives evaluation a stable order over the schedule map.
func sortedSupplementIDs(schedule map[string]model.SupplementPlan) []string {
	ids := make([]string, 0, len(schedule))
	for id := range schedule {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EvaluateSupplement counts today's doses. A dose is taken when its dose key
// is set for today, overdue when its clock time is at or before now.
func EvaluateSupplement(s model.Snapshot, now time.Time) SupplementContext {
	day := dayKey(now)
	nowMin := minuteOfDay(now)
	c := SupplementContext{NextDoseMinutes: -1}

	var overdueNames, nextNames []string
	for _, id := range sortedSupplementIDs(s.SuppSchedule) {
		plan := s.SuppSchedule[id]
		if !plan.Enabled {
			continue
		}
		name := supplementName(id, plan)
		for i, hhmm := range DoseTimes(plan) {
			c.TotalDoses++
			if s.DailySupp[model.DoseKey(id, i, day)] {
				c.TakenDoses++
				continue
			}
			c.RemainingDoses++

			m, ok := parseClock(hhmm)
			if !ok {
				continue
			}
			if m <= nowMin {
				c.OverdueDoses++
				overdueNames = appendUnique(overdueNames, name)
				continue
			}
			until := m - nowMin
			switch {
			case c.NextDoseMinutes < 0 || until < c.NextDoseMinutes:
				c.NextDoseMinutes = until
				c.NextDoseTime = hhmm
				nextNames = []string{name}
			case until == c.NextDoseMinutes:
				nextNames = appendUnique(nextNames, name)
			}
		}
	}

	if len(overdueNames) > 0 {
		c.DueNames = overdueNames
	} else {
		c.DueNames = nextNames
	}
	return c
}

// SupplementLevel escalates on overdue doses and on lateness in the day.
func SupplementLevel(c SupplementContext, now time.Time) Level {
	hour := now.Hour()
	switch {
	case c.OverdueDoses >= 2:
		return LevelUrgent
	case c.OverdueDoses >= 1 && hour >= 16:
		return LevelUrgent
	case c.OverdueDoses >= 1:
		return LevelNudge
	case c.RemainingDoses >= 3 && hour >= 14:
		return LevelNudge
	case c.RemainingDoses >= 1 && hour >= 20:
		return LevelUrgent
	}
	return LevelGentle
}

// SupplementInterval tightens with more overdue doses, from 28 down to 6.
func SupplementInterval(c SupplementContext, level Level) int {
	switch level {
	case LevelUrgent:
		switch {
		case c.OverdueDoses >= 3:
			return 6
		case c.OverdueDoses >= 2:
			return 8
		}
		return 10
	case LevelNudge:
		if c.OverdueDoses >= 1 {
			return 14
		}
		return 18
	}
	if c.NextDoseMinutes >= 0 && c.NextDoseMinutes <= 30 {
		return 20
	}
	return 28
}

// supplementLeadMinutes bounds how early a gentle "dose coming up" reminder
// may fire.
const supplementLeadMinutes = 60

func supplementNeedsReminder(c SupplementContext, level Level) bool {
	if c.RemainingDoses == 0 {
		return false
	}
	if level != LevelGentle || c.OverdueDoses > 0 {
		return true
	}
	return c.NextDoseMinutes >= 0 && c.NextDoseMinutes <= supplementLeadMinutes
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
