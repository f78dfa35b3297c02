package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/nestcue/internal/content"
	"github.com/dukerupert/nestcue/internal/model"
)

// Ambient cadences, looser than reminders since nothing is due.
const (
	TipIntervalMinutes  = 180
	NameIntervalMinutes = 240
)

// Builder turns contexts into candidates using the phrase pools.
type Builder struct {
	Content    *content.Repository
	Priorities Priorities
}

func NewBuilder(repo *content.Repository, prio Priorities) *Builder {
	return &Builder{Content: repo, Priorities: prio}
}

// Candidates builds every reminder the channel toggles allow and whose
// context needs one, in category order.
func (b *Builder) Candidates(ctxs Contexts, prefs model.Preferences, now time.Time) []Candidate {
	var out []Candidate
	ch := prefs.Channels
	if CategorySupplement.Enabled(ch) {
		if c, ok := b.Supplement(ctxs.Supplement, now); ok {
			out = append(out, c)
		}
	}
	if CategoryWork.Enabled(ch) {
		if c, ok := b.Work(ctxs.Work, now); ok {
			out = append(out, c)
		}
	}
	if CategoryMood.Enabled(ch) {
		if c, ok := b.Mood(ctxs.Mood, now); ok {
			out = append(out, c)
		}
	}
	if CategoryPlan.Enabled(ch) {
		if c, ok := b.Plan(ctxs.Planner, now); ok {
			out = append(out, c)
		}
	}
	return out
}

func (b *Builder) Supplement(c SupplementContext, now time.Time) (Candidate, bool) {
	level := SupplementLevel(c, now)
	if !supplementNeedsReminder(c, level) {
		return Candidate{}, false
	}
	interval := SupplementInterval(c, level)
	slot := fmt.Sprintf("supp:%s:%s:%d:%d", dayKey(now), level, interval, content.Bucket(now, interval))

	vars := map[string]string{
		"names":     strings.Join(c.DueNames, b.Content.Label("join", nil)),
		"time":      c.NextDoseTime,
		"remaining": strconv.Itoa(c.RemainingDoses),
		"overdue":   strconv.Itoa(c.OverdueDoses),
		"next":      strconv.Itoa(c.NextDoseMinutes),
	}
	return b.compose(CategorySupplement, level, interval, slot, "/?tab=supplements", vars), true
}

func (b *Builder) Work(c WorkContext, now time.Time) (Candidate, bool) {
	if !c.NeedsReminder || c.Hour < workStartHour {
		return Candidate{}, false
	}
	level := WorkLevel(c)
	interval := WorkInterval(c, level)
	slot := fmt.Sprintf("work:%s:%s:%d:%d", dayKey(now), level, interval, content.Bucket(now, interval))
	return b.compose(CategoryWork, level, interval, slot, "/?tab=work", nil), true
}

func (b *Builder) Mood(c MoodContext, now time.Time) (Candidate, bool) {
	if !c.NeedsReminder {
		return Candidate{}, false
	}
	level := MoodLevel(c)
	slot := fmt.Sprintf("mood:%s:%s", dayKey(now), c.ActiveWindow.ID)
	vars := map[string]string{"window": b.Content.Label(c.ActiveWindow.Label, nil)}

	cand := b.compose(CategoryMood, level, MoodInterval(), slot, "/?openMood=1", vars)
	cand.MoodQuickActions = b.Content.MoodActions()
	return cand, true
}

func (b *Builder) Plan(c PlannerContext, now time.Time) (Candidate, bool) {
	pc := c.Candidate
	if pc == nil {
		return Candidate{}, false
	}
	level := PlannerLevel(c, now)
	interval := PlannerInterval(level)
	slot := fmt.Sprintf("plan:%s:%s:%s:%d:%d", dayKey(now), pc.DateISO, pc.PlanID, interval, content.Bucket(now, interval))

	title := pc.Title
	if title == "" {
		title = b.Content.Label("plan.untitled", nil)
	}
	vars := map[string]string{
		"title": title,
		"time":  pc.Time,
		"when":  b.when(pc),
		"count": strconv.Itoa(c.PendingTodayCount),
	}
	return b.compose(CategoryPlan, level, interval, slot, "/?tab=planner&date="+pc.DateISO, vars), true
}

func (b *Builder) when(pc *PlanCandidate) string {
	switch {
	case pc.IsOverdueDay:
		return b.Content.Label("when.daysAgo", map[string]string{"n": strconv.Itoa(pc.OverdueDays)})
	case !pc.HasTime:
		return b.Content.Label("when.today", nil)
	case pc.MinutesUntil > 0:
		return b.Content.Label("when.in", map[string]string{"n": strconv.Itoa(pc.MinutesUntil)})
	case pc.MinutesUntil == 0:
		return b.Content.Label("when.now", nil)
	}
	return b.Content.Label("when.late", map[string]string{"n": strconv.Itoa(-pc.MinutesUntil)})
}

// Tip is the ambient daily tip for the current 180-minute bucket.
func (b *Builder) Tip(now time.Time) (Candidate, bool) {
	bucket := content.Bucket(now, TipIntervalMinutes)
	slot := fmt.Sprintf("tip:%s:%d", dayKey(now), bucket)
	tip, ok := b.Content.Tip(slot)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{
		Type:            CategoryTip,
		Level:           LevelGentle,
		IntervalMinutes: TipIntervalMinutes,
		SlotKey:         slot,
		PriorityScore:   b.Priorities.Score(CategoryTip, LevelGentle),
		Title:           b.Content.Label("tip.title", nil),
		Body:            tip,
		URL:             "/?tab=home",
	}, true
}

// NameSpotlight rotates a suggested name. It is only checked on even minutes.
func (b *Builder) NameSpotlight(now time.Time) (Candidate, bool) {
	if now.Minute()%2 != 0 {
		return Candidate{}, false
	}
	bucket := content.Bucket(now, NameIntervalMinutes)
	slot := fmt.Sprintf("name:%s:%d", dayKey(now), bucket)
	name, ok := b.Content.Name(slot)
	if !ok {
		return Candidate{}, false
	}
	vars := map[string]string{"name": name.Name, "meaning": name.Meaning}
	return Candidate{
		Type:            CategoryName,
		Level:           LevelGentle,
		IntervalMinutes: NameIntervalMinutes,
		SlotKey:         slot,
		PriorityScore:   b.Priorities.Score(CategoryName, LevelGentle),
		Title:           b.Content.Label("name.title", vars),
		Body:            b.Content.Label("name.body", vars),
		URL:             "/?tab=names",
	}, true
}

func (b *Builder) compose(cat Category, level Level, interval int, slot, url string, vars map[string]string) Candidate {
	style := b.Content.Style(slot)
	return Candidate{
		Type:            cat,
		Level:           level,
		IntervalMinutes: interval,
		SlotKey:         slot,
		PriorityScore:   b.Priorities.Score(cat, level),
		Style:           style,
		Title:           b.Content.Title(string(cat), string(level), style, slot, vars),
		Body:            b.Content.Body(string(cat), string(level), slot, vars),
		URL:             url,
	}
}

// Best returns the highest-priority candidate. Ties keep the earlier one.
func Best(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.PriorityScore > best.PriorityScore {
			best = c
		}
	}
	return best, true
}
