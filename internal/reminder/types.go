// Package reminder turns tracked state into reminder candidates and the
// look-ahead schedule synced to the push relay.
//
// Everything here is a pure function of a snapshot and a timestamp.
package reminder

import (
	"time"

	"github.com/dukerupert/nestcue/internal/content"
	"github.com/dukerupert/nestcue/internal/model"
)

// Category is the kind of reminder.
type Category string

const (
	CategorySupplement Category = "supp"
	CategoryWork       Category = "work"
	CategoryMood       Category = "mood"
	CategoryPlan       Category = "plan"
	CategoryTip        Category = "tip"
	CategoryName       Category = "name"
)

// Enabled reports whether the user's channel toggles allow c.
func (c Category) Enabled(ch model.Channels) bool {
	switch c {
	case CategorySupplement, CategoryWork, CategoryMood:
		return ch.Reminders
	case CategoryPlan:
		return ch.Calendar
	case CategoryTip:
		return ch.DailyTip
	case CategoryName:
		return ch.Names
	}
	return false
}

// Level is the escalation tier of a reminder.
type Level string

const (
	LevelGentle Level = "gentle"
	LevelNudge  Level = "nudge"
	LevelUrgent Level = "urgent"
)

// SupplementContext summarises today's doses.
type SupplementContext struct {
	TotalDoses     int
	TakenDoses     int
	RemainingDoses int
	OverdueDoses   int
	// NextDoseMinutes is -1 when no dose is still ahead today.
	NextDoseMinutes int
	NextDoseTime    string
	// DueNames lists the overdue supplements, or the next ones when none
	// are overdue.
	DueNames []string
}

// WorkContext reports whether today's attendance still needs logging.
type WorkContext struct {
	IsWeekday     bool
	HasAttendance bool
	NeedsReminder bool
	Hour          int
}

// MoodWindow is a fixed check-in time of day.
type MoodWindow struct {
	ID          string
	MinuteOfDay int
	Label       string
}

// MoodContext reports whether a mood check-in is due.
type MoodContext struct {
	HasMoodToday  bool
	NeedsReminder bool
	ActiveWindow  *MoodWindow
}

// PlanCandidate is the planner item a reminder would be about.
type PlanCandidate struct {
	DateISO      string
	PlanID       string
	Title        string
	Time         string
	HasTime      bool
	MinutesUntil int
	IsOverdueDay bool
	OverdueDays  int
}

// PlannerContext holds the chosen plan and the pending counts.
type PlannerContext struct {
	Candidate           *PlanCandidate
	PendingTodayCount   int
	PendingOverdueCount int
}

// Contexts bundles the four evaluations made on one tick.
type Contexts struct {
	Supplement SupplementContext
	Work       WorkContext
	Mood       MoodContext
	Planner    PlannerContext
}

// Evaluate runs all four evaluators against the same instant.
func Evaluate(s model.Snapshot, now time.Time) Contexts {
	return Contexts{
		Supplement: EvaluateSupplement(s, now),
		Work:       EvaluateWork(s, now),
		Mood:       EvaluateMood(s, now),
		Planner:    EvaluatePlanner(s, now),
	}
}

// Candidate is one fully formed notification opportunity.
type Candidate struct {
	Type             Category
	Level            Level
	IntervalMinutes  int
	SlotKey          string
	PriorityScore    float64
	Style            string
	Title            string
	Body             string
	URL              string
	MoodQuickActions []content.MoodAction
}

// Notification converts c into the object handed to the notifier.
func (c Candidate) Notification() model.Notification {
	n := model.Notification{
		Title: c.Title,
		Body:  c.Body,
		Icon:  "/icons/icon-192.png",
		Badge: "/icons/badge-72.png",
		Tag:   c.SlotKey,
		Data:  model.NotificationData{URL: c.URL},
	}
	if len(c.MoodQuickActions) > 0 {
		n.Data.ActionURLs = make(map[string]string, len(c.MoodQuickActions))
		for _, a := range c.MoodQuickActions {
			action := "mood-" + a.Code
			n.Actions = append(n.Actions, model.NotificationAction{Action: action, Title: a.Label})
			n.Data.ActionURLs[action] = MoodQuickURL(a.Code)
		}
	}
	return n
}

// MoodQuickURL routes a quick mood reply back into the app.
func MoodQuickURL(code string) string {
	return "/?openMood=1&quickMood=" + code
}
