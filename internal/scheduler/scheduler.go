// Package scheduler runs the reminder tick loop: evaluate tracked state,
// sync the upcoming schedule, and fire at most one notification per tick.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/nestcue/internal/events"
	"github.com/dukerupert/nestcue/internal/ledger"
	"github.com/dukerupert/nestcue/internal/metrics"
	"github.com/dukerupert/nestcue/internal/model"
	"github.com/dukerupert/nestcue/internal/reminder"
)

// DefaultInterval is the tick period.
const DefaultInterval = 45 * time.Second

// Source of inbox entries written by the tick loop.
const Source = "scheduler"

// StateSource loads the tracked state.
type StateSource interface {
	Snapshot() (model.Snapshot, error)
}

// Inbox records fired and missed notifications.
type Inbox interface {
	Record(e model.InboxEntry) (bool, error)
}

// Syncer uploads the upcoming schedule when it changed.
type Syncer interface {
	MaybeSync(ctx context.Context, items []model.UpcomingItem, now time.Time) bool
}

// Clock returns the current time.
type Clock func() time.Time

// Outcome summarises what a tick did.
type Outcome string

const (
	OutcomeDisabled Outcome = "disabled"
	OutcomeIdle     Outcome = "idle"
	OutcomeFired    Outcome = "fired"
	OutcomeAmbient  Outcome = "ambient"
	OutcomeMissed   Outcome = "missed"
	OutcomeFailed   Outcome = "failed"
	OutcomeError    Outcome = "error"
)

// Result is returned by Tick.
type Result struct {
	Outcome   Outcome             `json:"outcome"`
	Candidate *reminder.Candidate `json:"candidate,omitempty"`
	Reason    string              `json:"reason,omitempty"`
	Path      string              `json:"path,omitempty"`
	Synced    bool                `json:"synced"`
}

// Config wires a Scheduler. State, Builder, Ledger and Inbox are required.
type Config struct {
	State            StateSource
	Builder          *reminder.Builder
	Ledger           *ledger.Ledger
	Inbox            Inbox
	Primary          Notifier
	Fallback         Notifier
	Syncer           Syncer
	Bus              *events.Bus
	Logger           *slog.Logger
	Preferences      model.Preferences
	Interval         time.Duration
	MarkFailedAsSent bool
}

// Scheduler periodically evaluates reminders.
type Scheduler struct {
	mu       sync.RWMutex
	tickMu   sync.Mutex
	prefs    model.Preferences
	state    StateSource
	builder  *reminder.Builder
	ledger   *ledger.Ledger
	inbox    Inbox
	delivery delivery
	syncer   Syncer
	bus      *events.Bus
	logger   *slog.Logger
	clock    Clock
	ticks    <-chan time.Time
	interval time.Duration

	markFailedAsSent bool

	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		prefs:            cfg.Preferences,
		state:            cfg.State,
		builder:          cfg.Builder,
		ledger:           cfg.Ledger,
		inbox:            cfg.Inbox,
		delivery:         delivery{primary: cfg.Primary, fallback: cfg.Fallback},
		syncer:           cfg.Syncer,
		bus:              cfg.Bus,
		logger:           logger.With("component", "scheduler"),
		clock:            time.Now,
		interval:         interval,
		markFailedAsSent: cfg.MarkFailedAsSent,
	}
}

// WithClock replaces the wall clock.
func (s *Scheduler) WithClock(c Clock) *Scheduler {
	s.clock = c
	return s
}

// WithTicks drives the loop from ch instead of an internal ticker.
func (s *Scheduler) WithTicks(ch <-chan time.Time) *Scheduler {
	s.ticks = ch
	return s
}

// Start runs one tick immediately and then one per interval until Stop or
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	ticks := s.ticks
	s.mu.Unlock()

	go func() {
		defer close(s.done)

		if ticks == nil {
			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()
			ticks = ticker.C
		}

		s.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				s.Tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Preferences returns the preferences the next tick will use.
func (s *Scheduler) Preferences() model.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// OnPreferencesChanged replaces the preferences. Turning notifications off
// clears the badge right away.
func (s *Scheduler) OnPreferencesChanged(ctx context.Context, prefs model.Preferences) {
	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()

	if !prefs.NotificationsEnabled {
		s.clearBadge(ctx)
	}
}

// Upcoming builds the current upcoming schedule.
func (s *Scheduler) Upcoming() ([]model.UpcomingItem, error) {
	snap, err := s.state.Snapshot()
	if err != nil {
		return nil, err
	}
	return reminder.BuildSchedule(snap, s.builder.Content, s.builder.Priorities, s.clock()), nil
}

// Tick evaluates reminders once. It never returns an error: failures are
// logged and the next tick retries.
func (s *Scheduler) Tick(ctx context.Context) Result {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	start := time.Now()
	res := s.tick(ctx)
	metrics.TickDuration.Observe(time.Since(start).Seconds())
	metrics.TicksTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

func (s *Scheduler) tick(ctx context.Context) Result {
	now := s.clock()
	prefs := s.Preferences()

	s.clearBadge(ctx)
	if !prefs.NotificationsEnabled {
		return Result{Outcome: OutcomeDisabled}
	}

	snap, err := s.state.Snapshot()
	if err != nil {
		s.logger.Error("load tracked state", "error", err)
		return Result{Outcome: OutcomeError, Reason: "state-unavailable"}
	}
	ctxs := reminder.Evaluate(snap, now)

	var res Result
	if s.syncer != nil {
		items := reminder.BuildSchedule(snap, s.builder.Content, s.builder.Priorities, now)
		res.Synced = s.syncer.MaybeSync(ctx, items, now)
	}

	fresh, err := s.unsent(s.builder.Candidates(ctxs, prefs, now), now)
	if err != nil {
		s.logger.Error("read ledger", "error", err)
		res.Outcome, res.Reason = OutcomeError, "ledger-unavailable"
		return res
	}

	quiet := reminder.InQuietHours(prefs.QuietHours, now)
	permitted := s.delivery.permitted()

	if winner, ok := reminder.Best(fresh); ok {
		switch {
		case quiet:
			return s.miss(res, winner, model.ReasonQuietHours, now)
		case !permitted:
			return s.miss(res, winner, model.ReasonPermission, now)
		}
		return s.fire(ctx, res, winner, now, OutcomeFired)
	}

	// Nothing actionable. Ambient content is never logged as missed.
	if quiet || !permitted {
		res.Outcome = OutcomeIdle
		return res
	}
	var ambient []reminder.Candidate
	if prefs.Channels.DailyTip {
		if c, ok := s.builder.Tip(now); ok {
			ambient = append(ambient, c)
		}
	}
	if prefs.Channels.Names {
		if c, ok := s.builder.NameSpotlight(now); ok {
			ambient = append(ambient, c)
		}
	}
	ambient, err = s.unsent(ambient, now)
	if err != nil {
		s.logger.Error("read ledger", "error", err)
		res.Outcome, res.Reason = OutcomeError, "ledger-unavailable"
		return res
	}
	if c, ok := reminder.Best(ambient); ok {
		return s.fire(ctx, res, c, now, OutcomeAmbient)
	}

	res.Outcome = OutcomeIdle
	return res
}

func (s *Scheduler) unsent(cands []reminder.Candidate, now time.Time) ([]reminder.Candidate, error) {
	out := cands[:0:0]
	for _, c := range cands {
		sent, err := s.ledger.HasSent(c.SlotKey, now)
		if err != nil {
			return nil, err
		}
		if !sent {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Scheduler) miss(res Result, c reminder.Candidate, reason string, now time.Time) Result {
	entry := inboxEntry(c, model.InboxMissed, reason, now)
	inserted, err := s.inbox.Record(entry)
	if err != nil {
		s.logger.Error("record missed notification", "slot", c.SlotKey, "error", err)
	}
	if inserted {
		s.logger.Info("notification missed", "slot", c.SlotKey, "reason", reason)
		metrics.NotificationsTotal.WithLabelValues(string(c.Type), model.InboxMissed).Inc()
		s.bus.Publish(events.Event{Kind: events.NotificationMissed, At: now, Data: entry})
	}
	res.Outcome, res.Candidate, res.Reason = OutcomeMissed, &c, reason
	return res
}

func (s *Scheduler) fire(ctx context.Context, res Result, c reminder.Candidate, now time.Time, outcome Outcome) Result {
	res.Candidate = &c
	path, err := s.delivery.send(ctx, c.Notification())
	if err != nil {
		s.logger.Warn("deliver notification", "slot", c.SlotKey, "error", err)
		if s.markFailedAsSent {
			s.markSent(c.SlotKey, now)
		}
		entry := inboxEntry(c, model.InboxMissed, model.ReasonDeliveryFailed, now)
		if _, err := s.inbox.Record(entry); err != nil {
			s.logger.Error("record failed notification", "slot", c.SlotKey, "error", err)
		}
		metrics.NotificationsTotal.WithLabelValues(string(c.Type), "failed").Inc()
		s.bus.Publish(events.Event{Kind: events.NotificationMissed, At: now, Data: entry})
		res.Outcome, res.Reason = OutcomeFailed, model.ReasonDeliveryFailed
		return res
	}

	s.markSent(c.SlotKey, now)
	entry := inboxEntry(c, model.InboxSent, "", now)
	if _, err := s.inbox.Record(entry); err != nil {
		s.logger.Error("record sent notification", "slot", c.SlotKey, "error", err)
	}
	s.logger.Info("notification fired", "slot", c.SlotKey, "type", c.Type, "level", c.Level, "path", path)
	metrics.NotificationsTotal.WithLabelValues(string(c.Type), model.InboxSent).Inc()
	s.bus.Publish(events.Event{Kind: events.NotificationFired, At: now, Data: entry})

	res.Outcome, res.Path = outcome, path
	return res
}

func (s *Scheduler) markSent(slotKey string, now time.Time) {
	if err := s.ledger.MarkSent(slotKey, now); err != nil {
		s.logger.Error("mark slot sent", "slot", slotKey, "error", err)
	}
}

func (s *Scheduler) clearBadge(ctx context.Context) {
	if err := s.delivery.clearBadge(ctx); err != nil {
		s.logger.Debug("clear badge", "error", err)
	}
}

func inboxEntry(c reminder.Candidate, status, reason string, now time.Time) model.InboxEntry {
	return model.InboxEntry{
		Title:     c.Title,
		Body:      c.Body,
		Type:      string(c.Type),
		Level:     string(c.Level),
		Status:    status,
		Reason:    reason,
		Source:    Source,
		SlotKey:   c.SlotKey,
		DedupeKey: status + ":" + c.SlotKey,
		CreatedAt: now,
	}
}
