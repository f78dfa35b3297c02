package scheduler

import (
	"context"
	"errors"

	"github.com/dukerupert/nestcue/internal/model"
)

// ErrNoNotifier is returned when neither delivery path can show a notification.
var ErrNoNotifier = errors.New("no notifier available")

// Notifier is one delivery path for a fired notification.
type Notifier interface {
	Name() string
	// Permitted reports whether this path is currently able to display.
	Permitted() bool
	Notify(ctx context.Context, n model.Notification) error
}

// BadgeClearer is implemented by notifiers that can reset the app badge.
type BadgeClearer interface {
	ClearBadge(ctx context.Context) error
}

// delivery tries the primary path first and falls back when it is
// unavailable or fails.
type delivery struct {
	primary  Notifier
	fallback Notifier
}

func (d delivery) permitted() bool {
	return (d.primary != nil && d.primary.Permitted()) || (d.fallback != nil && d.fallback.Permitted())
}

// send returns the name of the path that delivered n.
func (d delivery) send(ctx context.Context, n model.Notification) (string, error) {
	err := ErrNoNotifier
	for _, path := range []Notifier{d.primary, d.fallback} {
		if path == nil || !path.Permitted() {
			continue
		}
		if err = path.Notify(ctx, n); err == nil {
			return path.Name(), nil
		}
	}
	return "", err
}

func (d delivery) clearBadge(ctx context.Context) error {
	var errs []error
	for _, path := range []Notifier{d.primary, d.fallback} {
		if bc, ok := path.(BadgeClearer); ok {
			if err := bc.ClearBadge(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
