package model

import "fmt"

// DateLayout is the calendar-day format used for every date key.
const DateLayout = "2006-01-02"

// SupplementPlan is one supplement's dosing schedule.
type SupplementPlan struct {
	Name        string   `json:"name,omitempty"`
	Enabled     bool     `json:"enabled"`
	Times       []string `json:"times"`
	TimesPerDay int      `json:"timesPerDay"`
}

type AttendanceRecord struct {
	Worked bool    `json:"worked"`
	Hours  float64 `json:"hours"`
	Note   string  `json:"note"`
}

type MoodEntry struct {
	Date     string `json:"date"`
	Mood     string `json:"mood"`
	Energy   int    `json:"energy"`
	Cravings string `json:"cravings"`
	Notes    string `json:"notes"`
}

type PlanItem struct {
	ID       string   `json:"id"`
	Time     string   `json:"time"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Notes    string   `json:"notes"`
	Done     bool     `json:"done"`
	TaskIDs  []string `json:"taskIds"`
}

// Snapshot is the tracked state the reminder engine reads on every tick.
// Any field may be nil.
type Snapshot struct {
	SuppSchedule map[string]SupplementPlan   `json:"suppSchedule"`
	DailySupp    map[string]bool             `json:"dailySupp"`
	Attendance   map[string]AttendanceRecord `json:"attendance"`
	Moods        []MoodEntry                 `json:"moods"`
	Planner      map[string][]PlanItem       `json:"planner"`
}

// DoseKey identifies one scheduled dose on one calendar day.
func DoseKey(suppID string, doseIndex int, day string) string {
	return fmt.Sprintf("%s_%d_%s", suppID, doseIndex, day)
}
