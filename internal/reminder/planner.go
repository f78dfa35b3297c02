package reminder

import (
	"fmt"
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

type planRef struct {
	date    string
	day     time.Time
	item    model.PlanItem
	id      string
	minutes int
	timed   bool
}

// less orders by date, then time of day (untimed last), then title.
func (a planRef) less(b planRef) bool {
	if a.date != b.date {
		return a.date < b.date
	}
	if a.timed != b.timed {
		return a.timed
	}
	if a.minutes != b.minutes {
		return a.minutes < b.minutes
	}
	if a.item.Title != b.item.Title {
		return a.item.Title < b.item.Title
	}
	return a.id < b.id
}

// EvaluatePlanner picks the plan to remind about. Undone plans from earlier
// days always win over today's, oldest day first.
func EvaluatePlanner(s model.Snapshot, now time.Time) PlannerContext {
	today := dayKey(now)
	var c PlannerContext
	var overdue, pending *planRef

	for date, items := range s.Planner {
		day, err := time.ParseInLocation(model.DateLayout, date, now.Location())
		if err != nil || date > today {
			continue
		}
		for i, item := range items {
			if item.Done {
				continue
			}
			ref := planRef{date: date, day: day, item: item, id: item.ID}
			if ref.id == "" {
				ref.id = fmt.Sprintf("%s#%d", date, i)
			}
			ref.minutes, ref.timed = parseClock(item.Time)

			if date < today {
				c.PendingOverdueCount++
				if overdue == nil || ref.less(*overdue) {
					r := ref
					overdue = &r
				}
				continue
			}
			c.PendingTodayCount++
			if pending == nil || ref.less(*pending) {
				r := ref
				pending = &r
			}
		}
	}

	pick := pending
	if overdue != nil {
		pick = overdue
	}
	if pick == nil {
		return c
	}

	at := startOfDay(pick.day)
	if pick.timed {
		at = atMinute(pick.day, pick.minutes)
	} else if pick.date == today {
		at = now
	}
	cand := &PlanCandidate{
		DateISO:      pick.date,
		PlanID:       pick.id,
		Title:        pick.item.Title,
		Time:         pick.item.Time,
		HasTime:      pick.timed,
		MinutesUntil: int(at.Sub(now).Truncate(time.Minute) / time.Minute),
		IsOverdueDay: pick.date < today,
	}
	if cand.IsOverdueDay {
		cand.OverdueDays = daysBetween(pick.day, now)
	}
	c.Candidate = cand
	return c
}

// PlannerLevel rates the candidate plan by how close or late it is.
func PlannerLevel(c PlannerContext, now time.Time) Level {
	cand := c.Candidate
	if cand == nil {
		return LevelGentle
	}
	hour := now.Hour()
	switch {
	case cand.IsOverdueDay:
		return LevelUrgent
	case cand.HasTime && cand.MinutesUntil <= 0:
		if hour >= 18 {
			return LevelUrgent
		}
		return LevelNudge
	case cand.HasTime && cand.MinutesUntil <= 30:
		return LevelNudge
	case c.PendingTodayCount >= 3 && hour >= 15:
		return LevelNudge
	case hour >= 20:
		return LevelNudge
	}
	return LevelGentle
}

// PlannerInterval is the slot width in minutes for a planner level.
func PlannerInterval(level Level) int {
	switch level {
	case LevelUrgent:
		return 18
	case LevelNudge:
		return 30
	}
	return 45
}
