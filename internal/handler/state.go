package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/nestcue/internal/events"
	"github.com/dukerupert/nestcue/internal/model"
	"github.com/dukerupert/nestcue/internal/store"
)

// StateHandler edits the tracked state the reminder engine reads.
type StateHandler struct {
	state  *store.StateStore
	bus    *events.Bus
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

func NewStateHandler(ss *store.StateStore, bus *events.Bus, loc *time.Location, logger *slog.Logger) *StateHandler {
	if loc == nil {
		loc = time.Local
	}
	return &StateHandler{state: ss, bus: bus, loc: loc, now: time.Now, logger: logger}
}

func (h *StateHandler) changed(entity, action string, data any) {
	h.bus.Publish(events.Event{
		Kind: events.StateChanged,
		Data: map[string]any{"entity": entity, "action": action, "value": data},
	})
}

func (h *StateHandler) today() string {
	return h.now().In(h.loc).Format(model.DateLayout)
}

// Snapshot handles GET /api/state
func (h *StateHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Snapshot()
	if err != nil {
		h.logger.Error("load snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load state")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PutSupplement handles PUT /api/supplements/{id}
func (h *StateHandler) PutSupplement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var plan model.SupplementPlan
	if err := decodeJSON(w, r, &plan); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if plan.TimesPerDay < 0 {
		writeError(w, http.StatusBadRequest, "timesPerDay must not be negative")
		return
	}

	if err := h.state.UpsertSupplement(id, plan); err != nil {
		h.logger.Error("upsert supplement", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save supplement")
		return
	}
	h.changed("supplement", "updated", map[string]any{"id": id, "plan": plan})
	writeJSON(w, http.StatusOK, plan)
}

// DeleteSupplement handles DELETE /api/supplements/{id}
func (h *StateHandler) DeleteSupplement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.state.DeleteSupplement(id); err != nil {
		h.notFoundOr(w, err, "supplement", "failed to delete supplement")
		return
	}
	h.changed("supplement", "deleted", map[string]any{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

type doseRequest struct {
	DoseKey   string `json:"doseKey"`
	SuppID    string `json:"suppId"`
	DoseIndex int    `json:"doseIndex"`
	Date      string `json:"date"`
	Taken     bool   `json:"taken"`
}

func (req doseRequest) key(today string) (string, error) {
	if req.DoseKey != "" {
		return req.DoseKey, nil
	}
	if req.SuppID == "" {
		return "", errors.New("doseKey or suppId is required")
	}
	if req.DoseIndex < 0 {
		return "", errors.New("doseIndex must not be negative")
	}
	day := req.Date
	if day == "" {
		day = today
	}
	if !validDate(day) {
		return "", errors.New("date must be YYYY-MM-DD")
	}
	return model.DoseKey(req.SuppID, req.DoseIndex, day), nil
}

// SetDose handles POST /api/doses
func (h *StateHandler) SetDose(w http.ResponseWriter, r *http.Request) {
	var req doseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := req.key(h.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.state.SetDose(key, req.Taken); err != nil {
		h.logger.Error("set dose", "dose_key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save dose")
		return
	}
	h.changed("dose", "updated", map[string]any{"doseKey": key, "taken": req.Taken})
	writeJSON(w, http.StatusOK, map[string]any{"doseKey": key, "taken": req.Taken})
}

// PutAttendance handles PUT /api/attendance/{date}
func (h *StateHandler) PutAttendance(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !validDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	var rec model.AttendanceRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rec.Hours < 0 || rec.Hours > 24 {
		writeError(w, http.StatusBadRequest, "hours must be between 0 and 24")
		return
	}

	if err := h.state.SetAttendance(date, rec); err != nil {
		h.logger.Error("set attendance", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save attendance")
		return
	}
	h.changed("attendance", "updated", map[string]any{"date": date, "record": rec})
	writeJSON(w, http.StatusOK, rec)
}

// DeleteAttendance handles DELETE /api/attendance/{date}
func (h *StateHandler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if err := h.state.DeleteAttendance(date); err != nil {
		h.notFoundOr(w, err, "attendance", "failed to delete attendance")
		return
	}
	h.changed("attendance", "deleted", map[string]any{"date": date})
	w.WriteHeader(http.StatusNoContent)
}

// AddMood handles POST /api/moods
func (h *StateHandler) AddMood(w http.ResponseWriter, r *http.Request) {
	var m model.MoodEntry
	if err := decodeJSON(w, r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m.Mood = strings.TrimSpace(m.Mood)
	if m.Mood == "" {
		writeError(w, http.StatusBadRequest, "mood is required")
		return
	}
	if m.Date == "" {
		m.Date = h.today()
	}
	if !validDate(m.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if err := h.state.AddMood(m); err != nil {
		h.logger.Error("add mood", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save mood")
		return
	}
	h.changed("mood", "created", m)
	writeJSON(w, http.StatusCreated, m)
}

// ListMoods handles GET /api/moods
func (h *StateHandler) ListMoods(w http.ResponseWriter, r *http.Request) {
	moods, err := h.state.ListMoods()
	if err != nil {
		h.logger.Error("list moods", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list moods")
		return
	}
	if moods == nil {
		moods = []model.MoodEntry{}
	}
	writeJSON(w, http.StatusOK, moods)
}

// PutPlan handles PUT /api/planner/{date}/{id}
func (h *StateHandler) PutPlan(w http.ResponseWriter, r *http.Request) {
	date, id := r.PathValue("date"), r.PathValue("id")
	if !validDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	var p model.PlanItem
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = id
	if strings.TrimSpace(p.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if p.Time != "" && !timeFormatRegexp.MatchString(p.Time) {
		writeError(w, http.StatusBadRequest, "time must be HH:MM")
		return
	}

	if err := h.state.UpsertPlan(date, p); err != nil {
		h.logger.Error("upsert plan", "date", date, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save plan")
		return
	}
	h.changed("plan", "updated", map[string]any{"date": date, "plan": p})
	writeJSON(w, http.StatusOK, p)
}

// DeletePlan handles DELETE /api/planner/{date}/{id}
func (h *StateHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	date, id := r.PathValue("date"), r.PathValue("id")
	if err := h.state.DeletePlan(date, id); err != nil {
		h.notFoundOr(w, err, "plan", "failed to delete plan")
		return
	}
	h.changed("plan", "deleted", map[string]any{"date": date, "id": id})
	w.WriteHeader(http.StatusNoContent)
}

func (h *StateHandler) notFoundOr(w http.ResponseWriter, err error, entity, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, entity+" not found")
		return
	}
	h.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}
