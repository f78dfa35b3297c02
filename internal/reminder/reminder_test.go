package reminder

import (
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/nestcue/internal/content"
	"github.com/dukerupert/nestcue/internal/model"
)

// Wednesday
func at(hour, min int) time.Time {
	return time.Date(2024, 3, 6, hour, min, 0, 0, time.UTC)
}

func prenatalSnapshot() model.Snapshot {
	return model.Snapshot{
		SuppSchedule: map[string]model.SupplementPlan{
			"prenatal": {Name: "Prenatal", Enabled: true, Times: []string{"08:00"}},
		},
	}
}

func TestSupplementOverdueScenario(t *testing.T) {
	now := at(8, 5)
	c := EvaluateSupplement(prenatalSnapshot(), now)

	if c.RemainingDoses != 1 {
		t.Errorf("remaining = %d, want 1", c.RemainingDoses)
	}
	if c.OverdueDoses != 1 {
		t.Errorf("overdue = %d, want 1", c.OverdueDoses)
	}
	if level := SupplementLevel(c, now); level != LevelNudge {
		t.Errorf("level = %q, want %q", level, LevelNudge)
	}

	b := NewBuilder(content.Default("en"), DefaultPriorities())
	cand, ok := b.Supplement(c, now)
	if !ok {
		t.Fatal("expected a supplement candidate")
	}
	if !strings.Contains(cand.SlotKey, "supp") || !strings.Contains(cand.SlotKey, "2024-03-06") {
		t.Errorf("slot key = %q, want supp and date", cand.SlotKey)
	}

	later, _ := b.Supplement(EvaluateSupplement(prenatalSnapshot(), at(8, 6)), at(8, 6))
	if later.SlotKey != cand.SlotKey {
		t.Errorf("slot key changed within bucket: %q != %q", later.SlotKey, cand.SlotKey)
	}
	if later.Title != cand.Title {
		t.Errorf("title flickered within bucket: %q != %q", later.Title, cand.Title)
	}
}

func TestSupplementDoseCounting(t *testing.T) {
	s := model.Snapshot{
		SuppSchedule: map[string]model.SupplementPlan{
			"iron":  {Enabled: true, Times: []string{"08:00", "13:00", "19:00"}},
			"omega": {Enabled: true, TimesPerDay: 2},
			"off":   {Enabled: false, Times: []string{"07:00"}},
		},
		DailySupp: map[string]bool{
			model.DoseKey("iron", 0, "2024-03-06"):  true,
			model.DoseKey("iron", 2, "2024-03-06"):  true,
			model.DoseKey("omega", 0, "2024-03-05"): true, // yesterday
		},
	}
	c := EvaluateSupplement(s, at(12, 0))

	if c.TotalDoses != 5 {
		t.Errorf("total = %d, want 5", c.TotalDoses)
	}
	if c.TakenDoses != 2 {
		t.Errorf("taken = %d, want 2", c.TakenDoses)
	}
	if c.RemainingDoses != c.TotalDoses-c.TakenDoses {
		t.Errorf("remaining = %d, want %d", c.RemainingDoses, c.TotalDoses-c.TakenDoses)
	}
	if c.OverdueDoses > c.RemainingDoses {
		t.Errorf("overdue %d exceeds remaining %d", c.OverdueDoses, c.RemainingDoses)
	}
	// omega 08:00 is overdue; iron 13:00 and omega 13:00 are next
	if c.OverdueDoses != 1 {
		t.Errorf("overdue = %d, want 1", c.OverdueDoses)
	}
	if c.NextDoseMinutes != 60 {
		t.Errorf("next dose minutes = %d, want 60", c.NextDoseMinutes)
	}
}

func TestSupplementMalformedTimes(t *testing.T) {
	s := model.Snapshot{
		SuppSchedule: map[string]model.SupplementPlan{
			"x": {Enabled: true, Times: []string{"nope", "25:00"}},
		},
	}
	c := EvaluateSupplement(s, at(12, 0))
	if c.RemainingDoses != 2 || c.OverdueDoses != 0 || c.NextDoseMinutes != -1 {
		t.Errorf("got %+v, want 2 remaining with no timing", c)
	}
}

func TestSupplementLevels(t *testing.T) {
	cases := []struct {
		name string
		c    SupplementContext
		hour int
		want Level
	}{
		{"two overdue", SupplementContext{RemainingDoses: 2, OverdueDoses: 2}, 9, LevelUrgent},
		{"one overdue late", SupplementContext{RemainingDoses: 1, OverdueDoses: 1}, 16, LevelUrgent},
		{"one overdue", SupplementContext{RemainingDoses: 1, OverdueDoses: 1}, 10, LevelNudge},
		{"many remaining afternoon", SupplementContext{RemainingDoses: 3}, 14, LevelNudge},
		{"remaining at night", SupplementContext{RemainingDoses: 1}, 20, LevelUrgent},
		{"calm", SupplementContext{RemainingDoses: 1}, 9, LevelGentle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SupplementLevel(tc.c, at(tc.hour, 0)); got != tc.want {
				t.Errorf("level = %q, want %q", got, tc.want)
			}
		})
	}

	if got := SupplementInterval(SupplementContext{OverdueDoses: 3}, LevelUrgent); got != 6 {
		t.Errorf("interval with 3 overdue = %d, want 6", got)
	}
	if got := SupplementInterval(SupplementContext{NextDoseMinutes: -1}, LevelGentle); got != 28 {
		t.Errorf("calm interval = %d, want 28", got)
	}
}

func TestGentleSupplementWaitsForLeadWindow(t *testing.T) {
	s := model.Snapshot{
		SuppSchedule: map[string]model.SupplementPlan{
			"prenatal": {Enabled: true, Times: []string{"11:00"}},
		},
	}
	b := NewBuilder(content.Default("en"), DefaultPriorities())

	if _, ok := b.Supplement(EvaluateSupplement(s, at(8, 0)), at(8, 0)); ok {
		t.Error("expected no candidate three hours before the dose")
	}
	if _, ok := b.Supplement(EvaluateSupplement(s, at(10, 30)), at(10, 30)); !ok {
		t.Error("expected a candidate thirty minutes before the dose")
	}
}

func TestWorkScenario(t *testing.T) {
	now := at(17, 30)
	c := EvaluateWork(model.Snapshot{}, now)

	if !c.NeedsReminder {
		t.Fatal("expected needsReminder on an unlogged Wednesday")
	}
	level := WorkLevel(c)
	if level != LevelUrgent {
		t.Errorf("level = %q, want %q", level, LevelUrgent)
	}
	if got := WorkInterval(c, level); got > 12 {
		t.Errorf("interval = %d, want <= 12", got)
	}
}

func TestWorkWeekendAndLogged(t *testing.T) {
	saturday := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	if EvaluateWork(model.Snapshot{}, saturday).NeedsReminder {
		t.Error("expected no reminder on Saturday")
	}

	s := model.Snapshot{Attendance: map[string]model.AttendanceRecord{"2024-03-06": {Worked: false}}}
	if EvaluateWork(s, at(12, 0)).NeedsReminder {
		t.Error("expected no reminder once attendance exists")
	}
}

func TestMoodWindows(t *testing.T) {
	if c := EvaluateMood(model.Snapshot{}, at(11, 59)); c.NeedsReminder || c.ActiveWindow != nil {
		t.Errorf("before noon: got %+v, want no window", c)
	}

	c := EvaluateMood(model.Snapshot{}, at(17, 10))
	if c.ActiveWindow == nil || c.ActiveWindow.ID != "afternoon" {
		t.Fatalf("active window = %+v, want afternoon", c.ActiveWindow)
	}
	if MoodLevel(c) != LevelNudge {
		t.Errorf("level = %q, want nudge", MoodLevel(c))
	}
	if MoodLevel(EvaluateMood(model.Snapshot{}, at(21, 0))) != LevelUrgent {
		t.Error("expected urgent at night")
	}

	logged := model.Snapshot{Moods: []model.MoodEntry{{Date: "2024-03-06", Mood: "good"}}}
	if EvaluateMood(logged, at(21, 0)).NeedsReminder {
		t.Error("expected no reminder once a mood is logged today")
	}
}

func TestMoodCandidateQuickActions(t *testing.T) {
	b := NewBuilder(content.Default("en"), DefaultPriorities())
	cand, ok := b.Mood(EvaluateMood(model.Snapshot{}, at(12, 30)), at(12, 30))
	if !ok {
		t.Fatal("expected a mood candidate")
	}
	if cand.SlotKey != "mood:2024-03-06:noon" {
		t.Errorf("slot key = %q", cand.SlotKey)
	}

	n := cand.Notification()
	if len(n.Actions) == 0 {
		t.Fatal("expected quick actions")
	}
	url := n.Data.ActionURLs[n.Actions[0].Action]
	if !strings.Contains(url, "openMood=1&quickMood=") {
		t.Errorf("action url = %q", url)
	}
	if n.Tag != cand.SlotKey {
		t.Errorf("tag = %q, want slot key", n.Tag)
	}
}

func TestPlannerOverduePrecedence(t *testing.T) {
	s := model.Snapshot{
		Planner: map[string][]model.PlanItem{
			"2024-01-03": {{ID: "b", Title: "B"}},
			"2024-01-01": {{ID: "a", Title: "A"}},
			"2024-01-05": {{ID: "t", Title: "Today", Time: "09:00"}},
		},
	}
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	c := EvaluatePlanner(s, now)

	if c.Candidate == nil {
		t.Fatal("expected a candidate")
	}
	if c.Candidate.PlanID != "a" {
		t.Errorf("candidate = %q, want a", c.Candidate.PlanID)
	}
	if !c.Candidate.IsOverdueDay || c.Candidate.OverdueDays != 4 {
		t.Errorf("overdue = %v/%d, want true/4", c.Candidate.IsOverdueDay, c.Candidate.OverdueDays)
	}
	if c.PendingOverdueCount != 2 || c.PendingTodayCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", c.PendingOverdueCount, c.PendingTodayCount)
	}
	if PlannerLevel(c, now) != LevelUrgent {
		t.Errorf("level = %q, want urgent", PlannerLevel(c, now))
	}
}

func TestPlannerTodayOrdering(t *testing.T) {
	s := model.Snapshot{
		Planner: map[string][]model.PlanItem{
			"2024-03-06": {
				{ID: "z", Title: "Zumba", Time: "09:00"},
				{ID: "u", Title: "Apple"},
				{ID: "k", Title: "Bake", Time: "09:00"},
				{ID: "d", Title: "Done already", Time: "07:00", Done: true},
			},
			"2024-03-07": {{ID: "f", Title: "Future", Time: "06:00"}},
			"garbage":    {{ID: "g", Title: "Ignored"}},
		},
	}
	c := EvaluatePlanner(s, at(8, 0))

	if c.Candidate == nil || c.Candidate.PlanID != "k" {
		t.Fatalf("candidate = %+v, want k", c.Candidate)
	}
	if c.Candidate.MinutesUntil != 60 {
		t.Errorf("minutes until = %d, want 60", c.Candidate.MinutesUntil)
	}
	if c.PendingTodayCount != 3 {
		t.Errorf("pending today = %d, want 3", c.PendingTodayCount)
	}

	late := EvaluatePlanner(s, at(9, 20))
	if late.Candidate.MinutesUntil != -20 {
		t.Errorf("minutes until = %d, want -20", late.Candidate.MinutesUntil)
	}
	if PlannerLevel(late, at(9, 20)) != LevelNudge {
		t.Error("expected nudge for a plan due now")
	}
}

func TestQuietHoursWraparound(t *testing.T) {
	q := model.QuietHours{Enabled: true, Start: "22:00", End: "07:00"}
	cases := []struct {
		hour, min int
		want      bool
	}{
		{23, 30, true},
		{6, 0, true},
		{12, 0, false},
		{7, 0, false},
		{22, 0, true},
	}
	for _, tc := range cases {
		if got := InQuietHours(q, at(tc.hour, tc.min)); got != tc.want {
			t.Errorf("InQuietHours(%02d:%02d) = %v, want %v", tc.hour, tc.min, got, tc.want)
		}
	}

	q.Enabled = false
	if InQuietHours(q, at(23, 30)) {
		t.Error("disabled quiet hours should never be quiet")
	}
	if InQuietHours(model.QuietHours{Enabled: true, Start: "bad", End: "07:00"}, at(3, 0)) {
		t.Error("malformed quiet hours should never be quiet")
	}
	if !InQuietHours(model.QuietHours{Enabled: true, Start: "13:00", End: "15:00"}, at(14, 0)) {
		t.Error("expected same-day window to be quiet at 14:00")
	}
}

func TestBestPicksHighestPriority(t *testing.T) {
	cands := []Candidate{
		{SlotKey: "a", PriorityScore: 3.9},
		{SlotKey: "b", PriorityScore: 5.0},
		{SlotKey: "c", PriorityScore: 5.0},
	}
	best, ok := Best(cands)
	if !ok || best.SlotKey != "b" {
		t.Errorf("best = %q, want b", best.SlotKey)
	}
	if _, ok := Best(nil); ok {
		t.Error("expected no winner for empty list")
	}
}

func TestCandidatesRespectChannels(t *testing.T) {
	s := prenatalSnapshot()
	s.Planner = map[string][]model.PlanItem{"2024-03-06": {{ID: "p", Title: "Walk", Time: "18:00"}}}
	now := at(17, 30)
	b := NewBuilder(content.Default("en"), DefaultPriorities())

	prefs := model.DefaultPreferences()
	all := b.Candidates(Evaluate(s, now), prefs, now)
	if len(all) != 4 {
		t.Fatalf("candidates = %d, want 4 (supp, work, mood, plan)", len(all))
	}

	prefs.Channels.Reminders = false
	only := b.Candidates(Evaluate(s, now), prefs, now)
	if len(only) != 1 || only[0].Type != CategoryPlan {
		t.Errorf("got %+v, want only the plan candidate", only)
	}
}

func TestNameSpotlightEvenMinutes(t *testing.T) {
	b := NewBuilder(content.Default("en"), DefaultPriorities())
	if _, ok := b.NameSpotlight(at(10, 1)); ok {
		t.Error("expected no spotlight on an odd minute")
	}
	c, ok := b.NameSpotlight(at(10, 2))
	if !ok {
		t.Fatal("expected spotlight on an even minute")
	}
	if c.Title == "" || strings.Contains(c.Title, "{name}") {
		t.Errorf("title = %q", c.Title)
	}
}
