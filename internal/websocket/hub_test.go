package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/nestcue/internal/events"
	"github.com/dukerupert/nestcue/internal/model"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: nil,
		send: make(chan []byte, sendBufferSize),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
	return Message{}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestAttachForwardsBusEvents(t *testing.T) {
	hub := NewHub(slog.Default())
	bus := events.NewBus()
	detach := hub.Attach(bus)

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	bus.Publish(events.Event{Kind: events.NotificationFired, Data: model.InboxEntry{SlotKey: "mood:2024-03-06:noon"}})

	for _, c := range []*Client{c1, c2} {
		if got := receive(t, c); got.Type != "notification.fired" {
			t.Errorf("type = %q, want notification.fired", got.Type)
		}
	}

	detach()
	bus.Publish(events.Event{Kind: events.StateChanged})
	select {
	case <-c1.send:
		t.Error("received event after detach")
	default:
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(Message{Type: "fill"})
	}

	// This should drop the message, not panic or block
	if n := hub.Broadcast(Message{Type: "dropped"}); n != 0 {
		t.Errorf("accepted = %d, want 0", n)
	}

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNotifyOnlyPermittedClients(t *testing.T) {
	hub := NewHub(slog.Default())
	ctx := context.Background()

	if hub.Permitted() {
		t.Error("empty hub should not be permitted")
	}
	if err := hub.Notify(ctx, model.Notification{Title: "x"}); !errors.Is(err, ErrNoClients) {
		t.Errorf("err = %v, want ErrNoClients", err)
	}

	denied := mockClient(hub)
	granted := mockClient(hub)
	hub.Register(denied)
	hub.Register(granted)
	granted.handle([]byte(`{"type":"permission","permission":"granted"}`))
	denied.handle([]byte(`{"type":"permission","permission":"denied"}`))
	denied.handle([]byte(`not json`))

	if !hub.Permitted() {
		t.Fatal("expected permission from granted tab")
	}
	if err := hub.Notify(ctx, model.Notification{Title: "Dose due", Tag: "supp:x"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := receive(t, granted); got.Type != TypeNotification {
		t.Errorf("type = %q, want notification", got.Type)
	}
	select {
	case <-denied.send:
		t.Error("denied tab received a notification")
	default:
	}

	hub.ClearBadge(ctx)
	if got := receive(t, denied); got.Type != TypeBadge {
		t.Errorf("type = %q, want badge", got.Type)
	}

	hub.Unregister(denied)
	hub.Unregister(granted)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(Message{Type: "concurrent"})
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
