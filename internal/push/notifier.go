package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/nestcue/internal/model"
)

// LocalUser owns the subscriptions the agent registers for its own devices.
const LocalUser = "local"

// Sender delivers one push message.
type Sender interface {
	Send(ctx context.Context, sub model.WebPushSubscription, payload any) error
}

// SubscriptionSource lists and disables a user's device subscriptions.
type SubscriptionSource interface {
	ListByUser(userID string) ([]model.PushSubscription, error)
	Disable(id int64) error
}

// Notifier fires reminders as Web Push to this agent's registered devices,
// so they show up through the service worker even when no tab is open.
type Notifier struct {
	sender Sender
	subs   SubscriptionSource
	user   string
	logger *slog.Logger
}

func NewNotifier(sender Sender, subs SubscriptionSource, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		sender: sender,
		subs:   subs,
		user:   LocalUser,
		logger: logger.With("component", "push"),
	}
}

func (n *Notifier) Name() string { return "webpush" }

// Permitted reports whether at least one enabled device subscription exists.
func (n *Notifier) Permitted() bool {
	if n.sender == nil {
		return false
	}
	if svc, ok := n.sender.(*Service); ok && !svc.Configured() {
		return false
	}
	subs, err := n.subs.ListByUser(n.user)
	if err != nil {
		n.logger.Warn("list subscriptions", "error", err)
		return false
	}
	for _, s := range subs {
		if s.Enabled && s.NotifEnabled {
			return true
		}
	}
	return false
}

// Notify sends to every enabled device. It succeeds when any device accepted
// the message; expired subscriptions are disabled.
func (n *Notifier) Notify(ctx context.Context, note model.Notification) error {
	subs, err := n.subs.ListByUser(n.user)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	delivered := 0
	var errs []error
	for _, s := range subs {
		if !s.Enabled || !s.NotifEnabled {
			continue
		}
		err := n.sender.Send(ctx, s.Subscription, note)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ErrExpired):
			n.logger.Info("subscription expired", "device", s.DeviceID)
			if err := n.subs.Disable(s.ID); err != nil {
				n.logger.Warn("disable subscription", "device", s.DeviceID, "error", err)
			}
			errs = append(errs, err)
		default:
			errs = append(errs, fmt.Errorf("device %s: %w", s.DeviceID, err))
		}
	}

	if delivered > 0 {
		return nil
	}
	if len(errs) == 0 {
		return errors.New("no enabled subscriptions")
	}
	return errors.Join(errs...)
}
