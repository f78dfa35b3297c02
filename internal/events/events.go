// Package events is an in-process publish/subscribe bus for reminder
// activity. The websocket hub and the metrics collectors listen on it.
package events

import (
	"sync"
	"time"
)

// Kind names an event type.
type Kind string

const (
	NotificationFired  Kind = "notification.fired"
	NotificationMissed Kind = "notification.missed"
	PreferencesChanged Kind = "preferences.changed"
	StateChanged       Kind = "state.changed"
	ScheduleSynced     Kind = "schedule.synced"
)

// Event is one bus message. Data is JSON-encodable.
type Event struct {
	Kind Kind      `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// Bus fans events out to subscribers synchronously, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
	order  []int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e to every subscriber. A zero At is set to now.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.subs[id])
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
