// Package cloudsync uploads the upcoming reminder schedule to the push
// relay so reminders still arrive when the app is closed.
package cloudsync

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dukerupert/nestcue/internal/events"
	"github.com/dukerupert/nestcue/internal/ledger"
	"github.com/dukerupert/nestcue/internal/metrics"
	"github.com/dukerupert/nestcue/internal/model"
	"github.com/dukerupert/nestcue/internal/reminder"
)

// MinGap is the minimum time between two sync attempts.
const MinGap = 2 * time.Minute

// HashKey is the storage key of the last successfully synced hash.
const HashKey = "nestcue.sync-hash"

// Uploader sends a schedule to the relay.
type Uploader interface {
	HasSession() bool
	PutReminders(ctx context.Context, items []model.UpcomingItem, notifEnabled bool) error
}

// Syncer decides when the schedule is uploaded. At most one upload runs at a
// time and the hash is only committed after a successful upload. Uploads and
// Disable reach the relay one at a time, in call order.
type Syncer struct {
	uploader Uploader
	store    ledger.Storage
	bus      *events.Bus
	logger   *slog.Logger
	timeout  time.Duration

	busy atomic.Bool

	mu          sync.Mutex
	lastAttempt time.Time
	lastHash    string
	loaded      bool
	generation  uint64

	// putMu orders relay writes.
	putMu sync.Mutex

	wg sync.WaitGroup
}

func NewSyncer(uploader Uploader, store ledger.Storage, bus *events.Bus, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		uploader: uploader,
		store:    store,
		bus:      bus,
		logger:   logger.With("component", "cloudsync"),
		timeout:  30 * time.Second,
	}
}

// MaybeSync starts an asynchronous upload when a session exists, the
// schedule hash differs from the last successful sync, at least MinGap has
// passed since the last attempt and no upload is in flight. It reports
// whether an upload was started.
func (s *Syncer) MaybeSync(ctx context.Context, items []model.UpcomingItem, now time.Time) bool {
	if !s.uploader.HasSession() {
		return false
	}
	hash := reminder.ScheduleHash(items)

	s.mu.Lock()
	s.loadHash()
	if hash == s.lastHash || (!s.lastAttempt.IsZero() && now.Sub(s.lastAttempt) < MinGap) {
		s.mu.Unlock()
		return false
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return false
	}
	s.lastAttempt = now
	gen := s.generation
	s.mu.Unlock()

	// The upload outlives the tick.
	upload := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.busy.Store(false)
		s.upload(upload, items, hash, gen)
	}()
	return true
}

// upload sends the schedule unless Disable ran since it was started. The
// hash is committed only if no Disable ran while the upload was in flight.
func (s *Syncer) upload(ctx context.Context, items []model.UpcomingItem, hash string, gen uint64) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.putMu.Lock()
	defer s.putMu.Unlock()
	if !s.current(gen) {
		s.logger.Debug("sync superseded by disable")
		return
	}

	if err := s.uploader.PutReminders(ctx, items, true); err != nil {
		s.logger.Warn("sync schedule", "items", len(items), "error", err)
		metrics.SyncsTotal.WithLabelValues("error").Inc()
		return
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		metrics.SyncsTotal.WithLabelValues("superseded").Inc()
		return
	}
	s.lastHash = hash
	if err := s.store.Set(HashKey, []byte(hash)); err != nil {
		s.logger.Warn("persist sync hash", "error", err)
	}
	s.mu.Unlock()

	s.logger.Info("schedule synced", "items", len(items))
	metrics.SyncsTotal.WithLabelValues("ok").Inc()
	s.bus.Publish(events.Event{Kind: events.ScheduleSynced, Data: map[string]int{"items": len(items)}})
}

// Disable tells the relay to stop pushing for this device and forgets the
// last hash so the schedule is uploaded again once re-enabled. An upload
// already on the wire finishes first and does not commit its hash.
func (s *Syncer) Disable(ctx context.Context) error {
	if !s.uploader.HasSession() {
		return nil
	}
	s.mu.Lock()
	s.generation++
	s.loaded = true
	s.lastHash = ""
	s.lastAttempt = time.Time{}
	if err := s.store.Delete(HashKey); err != nil {
		s.logger.Warn("clear sync hash", "error", err)
	}
	s.mu.Unlock()

	s.putMu.Lock()
	defer s.putMu.Unlock()
	return s.uploader.PutReminders(ctx, nil, false)
}

func (s *Syncer) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// loadHash reads the persisted hash once. Callers hold s.mu.
func (s *Syncer) loadHash() {
	if s.loaded {
		return
	}
	s.loaded = true
	raw, err := s.store.Get(HashKey)
	if err != nil {
		s.logger.Warn("load sync hash", "error", err)
		return
	}
	s.lastHash = string(raw)
}

// LastHash returns the hash of the last successful upload.
func (s *Syncer) LastHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadHash()
	return s.lastHash
}

// Busy reports whether an upload is in flight.
func (s *Syncer) Busy() bool {
	return s.busy.Load()
}

// Wait blocks until in-flight uploads finish.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
