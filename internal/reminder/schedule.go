package reminder

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/nestcue/internal/content"
	"github.com/dukerupert/nestcue/internal/model"
	"golang.org/x/crypto/blake2b"
)

const (
	// StaleFloor drops schedule items that fired more than this long ago.
	StaleFloor = 2 * time.Hour
	// PlanLead is how long before a timed plan its reminder fires.
	PlanLead = 15 * time.Minute
	// scheduleDays covers today and tomorrow.
	scheduleDays = 2
)

// Fixed clock times of the look-ahead work and mood reminders.
var (
	workScheduleHours = []struct {
		hour  int
		level Level
	}{{11, LevelNudge}, {17, LevelUrgent}}

	moodScheduleLevels = map[string]Level{
		"noon":      LevelGentle,
		"afternoon": LevelNudge,
		"night":     LevelUrgent,
	}
)

// BuildSchedule lists the reminders due between now-StaleFloor and the end
// of tomorrow, sorted by fire time. It does not use the tick policy: the
// relay needs fixed times, not "what to say right now".
func BuildSchedule(s model.Snapshot, repo *content.Repository, prio Priorities, now time.Time) []model.UpcomingItem {
	var items []model.UpcomingItem
	floor := now.Add(-StaleFloor)

	add := func(cat Category, level Level, tag string, fireAt time.Time, vars map[string]string) {
		if fireAt.Before(floor) {
			return
		}
		style := repo.Style(tag)
		items = append(items, model.UpcomingItem{
			Type:              string(cat),
			Level:             string(level),
			NotificationTitle: repo.Title(string(cat), string(level), style, tag, vars),
			NotificationBody:  repo.Body(string(cat), string(level), tag, vars),
			Tag:               tag,
			FireAt:            fireAt,
			PriorityScore:     prio.Score(cat, level),
		})
	}

	today := startOfDay(now)
	for d := 0; d < scheduleDays; d++ {
		day := today.AddDate(0, 0, d)
		key := dayKey(day)

		for _, g := range groupDoses(s, key) {
			vars := map[string]string{
				"names":     strings.Join(g.names, repo.Label("join", nil)),
				"time":      g.clock,
				"remaining": strconv.Itoa(g.remaining),
				"overdue":   strconv.Itoa(len(g.names)),
				"next":      "0",
			}
			tag := fmt.Sprintf("supp-%s-%s", key, strings.ReplaceAll(g.clock, ":", ""))
			add(CategorySupplement, LevelNudge, tag, atMinute(day, g.minute), vars)
		}

		wd := day.Weekday()
		if _, logged := s.Attendance[key]; !logged && wd >= time.Monday && wd <= time.Friday {
			for _, w := range workScheduleHours {
				tag := fmt.Sprintf("work-%s-%02d", key, w.hour)
				add(CategoryWork, w.level, tag, atMinute(day, w.hour*60), nil)
			}
		}

		if !hasMoodOn(s, key) {
			for _, w := range MoodWindows {
				tag := fmt.Sprintf("mood-%s-%s", key, w.ID)
				vars := map[string]string{"window": repo.Label(w.Label, nil)}
				add(CategoryMood, moodScheduleLevels[w.ID], tag, atMinute(day, w.MinuteOfDay), vars)
			}
		}

		for i, p := range s.Planner[key] {
			m, ok := parseClock(p.Time)
			if p.Done || !ok {
				continue
			}
			id := p.ID
			if id == "" {
				id = fmt.Sprintf("%s#%d", key, i)
			}
			title := p.Title
			if title == "" {
				title = repo.Label("plan.untitled", nil)
			}
			vars := map[string]string{
				"title": title,
				"time":  p.Time,
				"when":  repo.Label("when.in", map[string]string{"n": strconv.Itoa(int(PlanLead / time.Minute))}),
				"count": "1",
			}
			tag := fmt.Sprintf("plan-%s-%s", key, id)
			add(CategoryPlan, LevelNudge, tag, atMinute(day, m).Add(-PlanLead), vars)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].FireAt.Equal(items[j].FireAt) {
			return items[i].FireAt.Before(items[j].FireAt)
		}
		return items[i].Tag < items[j].Tag
	})
	return items
}

type doseGroup struct {
	clock     string
	minute    int
	names     []string
	remaining int
}

// groupDoses bundles every untaken dose on day by clock time.
func groupDoses(s model.Snapshot, day string) []doseGroup {
	byMinute := make(map[int]*doseGroup)
	remaining := 0
	for _, id := range sortedSupplementIDs(s.SuppSchedule) {
		plan := s.SuppSchedule[id]
		if !plan.Enabled {
			continue
		}
		for i, hhmm := range DoseTimes(plan) {
			if s.DailySupp[model.DoseKey(id, i, day)] {
				continue
			}
			m, ok := parseClock(hhmm)
			if !ok {
				continue
			}
			remaining++
			g, ok := byMinute[m]
			if !ok {
				g = &doseGroup{clock: fmt.Sprintf("%02d:%02d", m/60, m%60), minute: m}
				byMinute[m] = g
			}
			g.names = appendUnique(g.names, supplementName(id, plan))
		}
	}

	out := make([]doseGroup, 0, len(byMinute))
	for _, g := range byMinute {
		g.remaining = remaining
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].minute < out[j].minute })
	return out
}

func hasMoodOn(s model.Snapshot, day string) bool {
	for _, m := range s.Moods {
		if m.Date == day {
			return true
		}
	}
	return false
}

// ScheduleHash fingerprints the parts of a schedule the relay cares about.
func ScheduleHash(items []model.UpcomingItem) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.Type)
		b.WriteByte('|')
		b.WriteString(it.Tag)
		b.WriteByte('|')
		b.WriteString(it.FireAt.UTC().Format(time.RFC3339))
		b.WriteByte('|')
		b.WriteString(it.NotificationTitle)
		b.WriteByte('\n')
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
