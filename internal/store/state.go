package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

// StateStore holds the tracked state the reminder engine reads: supplement
// plans, taken doses, attendance, moods and planner items.
type StateStore struct {
	db *sql.DB
}

func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Snapshot loads the full tracked state.
func (s *StateStore) Snapshot() (model.Snapshot, error) {
	var snap model.Snapshot
	var err error

	if snap.SuppSchedule, err = s.supplements(); err != nil {
		return snap, err
	}
	if snap.DailySupp, err = s.doses(); err != nil {
		return snap, err
	}
	if snap.Attendance, err = s.attendance(); err != nil {
		return snap, err
	}
	if snap.Moods, err = s.ListMoods(); err != nil {
		return snap, err
	}
	if snap.Planner, err = s.plans(); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *StateStore) supplements() (map[string]model.SupplementPlan, error) {
	rows, err := s.db.Query(`SELECT id, name, enabled, times, times_per_day FROM supplements ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.SupplementPlan)
	for rows.Next() {
		var id, times string
		var p model.SupplementPlan
		if err := rows.Scan(&id, &p.Name, &p.Enabled, &times, &p.TimesPerDay); err != nil {
			return nil, fmt.Errorf("scan supplement: %w", err)
		}
		if err := json.Unmarshal([]byte(times), &p.Times); err != nil {
			p.Times = nil
		}
		out[id] = p
	}
	return out, rows.Err()
}

func (s *StateStore) doses() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT dose_key FROM supplement_doses`)
	if err != nil {
		return nil, fmt.Errorf("list doses: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan dose: %w", err)
		}
		out[key] = true
	}
	return out, rows.Err()
}

func (s *StateStore) attendance() (map[string]model.AttendanceRecord, error) {
	rows, err := s.db.Query(`SELECT date, worked, hours, note FROM attendance`)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.AttendanceRecord)
	for rows.Next() {
		var date string
		var rec model.AttendanceRecord
		if err := rows.Scan(&date, &rec.Worked, &rec.Hours, &rec.Note); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out[date] = rec
	}
	return out, rows.Err()
}

func (s *StateStore) plans() (map[string][]model.PlanItem, error) {
	rows, err := s.db.Query(
		`SELECT date, id, time, title, location, notes, done, task_ids
		 FROM plans ORDER BY date, position, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.PlanItem)
	for rows.Next() {
		var date, taskIDs string
		var p model.PlanItem
		if err := rows.Scan(&date, &p.ID, &p.Time, &p.Title, &p.Location, &p.Notes, &p.Done, &taskIDs); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		if err := json.Unmarshal([]byte(taskIDs), &p.TaskIDs); err != nil {
			p.TaskIDs = nil
		}
		out[date] = append(out[date], p)
	}
	return out, rows.Err()
}

func (s *StateStore) UpsertSupplement(id string, p model.SupplementPlan) error {
	times := p.Times
	if times == nil {
		times = []string{}
	}
	raw, err := json.Marshal(times)
	if err != nil {
		return fmt.Errorf("encode supplement times: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO supplements (id, name, enabled, times, times_per_day, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, enabled = excluded.enabled, times = excluded.times,
		 times_per_day = excluded.times_per_day, updated_at = excluded.updated_at`,
		id, p.Name, p.Enabled, string(raw), p.TimesPerDay, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert supplement: %w", err)
	}
	return nil
}

func (s *StateStore) DeleteSupplement(id string) error {
	result, err := s.db.Exec(`DELETE FROM supplements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete supplement: %w", err)
	}
	return requireRow(result)
}

// SetDose marks one dose taken or untaken.
func (s *StateStore) SetDose(doseKey string, taken bool) error {
	var err error
	if taken {
		_, err = s.db.Exec(`INSERT OR IGNORE INTO supplement_doses (dose_key, taken_at) VALUES (?, ?)`, doseKey, time.Now().UTC())
	} else {
		_, err = s.db.Exec(`DELETE FROM supplement_doses WHERE dose_key = ?`, doseKey)
	}
	if err != nil {
		return fmt.Errorf("set dose: %w", err)
	}
	return nil
}

func (s *StateStore) SetAttendance(date string, rec model.AttendanceRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO attendance (date, worked, hours, note, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET worked = excluded.worked, hours = excluded.hours,
		 note = excluded.note, updated_at = excluded.updated_at`,
		date, rec.Worked, rec.Hours, rec.Note, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set attendance: %w", err)
	}
	return nil
}

func (s *StateStore) DeleteAttendance(date string) error {
	result, err := s.db.Exec(`DELETE FROM attendance WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return requireRow(result)
}

func (s *StateStore) AddMood(m model.MoodEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO moods (date, mood, energy, cravings, notes) VALUES (?, ?, ?, ?, ?)`,
		m.Date, m.Mood, m.Energy, m.Cravings, m.Notes,
	)
	if err != nil {
		return fmt.Errorf("add mood: %w", err)
	}
	return nil
}

func (s *StateStore) ListMoods() ([]model.MoodEntry, error) {
	rows, err := s.db.Query(`SELECT date, mood, energy, cravings, notes FROM moods ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	defer rows.Close()

	var moods []model.MoodEntry
	for rows.Next() {
		var m model.MoodEntry
		if err := rows.Scan(&m.Date, &m.Mood, &m.Energy, &m.Cravings, &m.Notes); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		moods = append(moods, m)
	}
	return moods, rows.Err()
}

// UpsertPlan stores a plan item under date. New items are appended after
// the existing ones for that day.
func (s *StateStore) UpsertPlan(date string, p model.PlanItem) error {
	taskIDs := p.TaskIDs
	if taskIDs == nil {
		taskIDs = []string{}
	}
	raw, err := json.Marshal(taskIDs)
	if err != nil {
		return fmt.Errorf("encode task ids: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO plans (date, id, position, time, title, location, notes, done, task_ids, updated_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM plans WHERE date = ?), ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date, id) DO UPDATE SET time = excluded.time, title = excluded.title,
		 location = excluded.location, notes = excluded.notes, done = excluded.done,
		 task_ids = excluded.task_ids, updated_at = excluded.updated_at`,
		date, p.ID, date, p.Time, p.Title, p.Location, p.Notes, p.Done, string(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}
	return nil
}

func (s *StateStore) DeletePlan(date, id string) error {
	result, err := s.db.Exec(`DELETE FROM plans WHERE date = ? AND id = ?`, date, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return requireRow(result)
}

// PruneDoses removes dose marks older than before.
func (s *StateStore) PruneDoses(before time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM supplement_doses WHERE taken_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune doses: %w", err)
	}
	return result.RowsAffected()
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
