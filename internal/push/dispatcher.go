package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/nestcue/internal/metrics"
	"github.com/dukerupert/nestcue/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchSize is the most notifications packed into one push message.
const BatchSize = 6

// DispatchStore is the relay storage the dispatcher works on.
type DispatchStore interface {
	ListActive() ([]model.PushSubscription, error)
	RemoveDispatched(id int64, fired []model.UpcomingItem, lastPushAt *time.Time) error
	Disable(id int64) error
}

// Stats summarises one dispatch pass.
type Stats struct {
	Subscriptions int `json:"subscriptions"`
	Sent          int `json:"sent"`
	Dropped       int `json:"dropped"`
	Failed        int `json:"failed"`
	Disabled      int `json:"disabled"`
	Pending       int `json:"pending"`
}

// Dispatcher fires due reminders held by the relay.
type Dispatcher struct {
	store       DispatchStore
	sender      Sender
	logger      *slog.Logger
	concurrency int

	runMu sync.Mutex
}

func NewDispatcher(store DispatchStore, sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:       store,
		sender:      sender,
		logger:      logger.With("component", "dispatch"),
		concurrency: 4,
	}
}

// Run sends every reminder with fireAt <= now, in batches of BatchSize,
// and keeps the rest queued. A subscription whose push service reports it
// gone is disabled. Reminders for devices with notifications off are dropped.
func (d *Dispatcher) Run(ctx context.Context, now time.Time) (Stats, error) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	subs, err := d.store.ListActive()
	if err != nil {
		return Stats{}, err
	}

	var (
		mu    sync.Mutex
		stats = Stats{Subscriptions: len(subs)}
	)
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			s := d.dispatch(ctx, sub, now)
			mu.Lock()
			stats.Sent += s.Sent
			stats.Dropped += s.Dropped
			stats.Failed += s.Failed
			stats.Disabled += s.Disabled
			stats.Pending += s.Pending
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	metrics.PendingReminders.Set(float64(stats.Pending))
	if stats.Sent > 0 || stats.Failed > 0 || stats.Disabled > 0 {
		d.logger.Info("dispatch pass", "subscriptions", stats.Subscriptions, "sent", stats.Sent,
			"failed", stats.Failed, "disabled", stats.Disabled, "pending", stats.Pending)
	}
	return stats, ctx.Err()
}

func (d *Dispatcher) dispatch(ctx context.Context, sub model.PushSubscription, now time.Time) Stats {
	var s Stats
	due, future := splitDue(sub.PendingReminders, now)
	if len(due) == 0 {
		s.Pending = len(future)
		return s
	}

	if !sub.NotifEnabled {
		s.Dropped = len(due)
		s.Pending = len(future)
		d.save(sub, due, nil)
		return s
	}

	var lastPush *time.Time
	for start := 0; start < len(due); start += BatchSize {
		end := min(start+BatchSize, len(due))
		batch := BatchPayload{Notifications: make([]Payload, 0, end-start)}
		for _, it := range due[start:end] {
			batch.Notifications = append(batch.Notifications, PayloadFromItem(it))
		}

		err := d.sender.Send(ctx, sub.Subscription, batch)
		if errors.Is(err, ErrExpired) {
			d.logger.Info("subscription gone", "user", sub.UserID, "device", sub.DeviceID)
			if err := d.store.Disable(sub.ID); err != nil {
				d.logger.Error("disable subscription", "id", sub.ID, "error", err)
			}
			metrics.DispatchedTotal.WithLabelValues("expired").Inc()
			s.Disabled = 1
			return s
		}
		if err != nil {
			// Keep this batch and the rest for the next pass.
			d.logger.Warn("send push", "user", sub.UserID, "device", sub.DeviceID, "error", err)
			metrics.DispatchedTotal.WithLabelValues("error").Inc()
			s.Failed += len(due) - start
			s.Pending = len(due) - start + len(future)
			if start > 0 {
				d.save(sub, due[:start], lastPush)
			}
			return s
		}

		metrics.DispatchedTotal.WithLabelValues("ok").Inc()
		s.Sent += end - start
		t := now
		lastPush = &t
	}

	s.Pending = len(future)
	d.save(sub, due, lastPush)
	return s
}

// save removes what was fired or dropped. Reminders uploaded since the
// pass started stay queued.
func (d *Dispatcher) save(sub model.PushSubscription, fired []model.UpcomingItem, lastPush *time.Time) {
	if err := d.store.RemoveDispatched(sub.ID, fired, lastPush); err != nil {
		d.logger.Error("save dispatch", "id", sub.ID, "error", err)
	}
}

// splitDue partitions items into due (fireAt <= now) and future, keeping order.
func splitDue(items []model.UpcomingItem, now time.Time) (due, future []model.UpcomingItem) {
	for _, it := range items {
		if it.FireAt.After(now) {
			future = append(future, it)
		} else {
			due = append(due, it)
		}
	}
	return due, future
}
