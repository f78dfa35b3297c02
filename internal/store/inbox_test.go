package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/nestcue/internal/database"
	"github.com/dukerupert/nestcue/internal/model"
)

func setupInboxTestDB(t *testing.T) *InboxStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewInboxStore(db)
}

func TestInboxDedupe(t *testing.T) {
	is := setupInboxTestDB(t)

	entry := model.InboxEntry{
		Title:   "Dose due",
		Type:    "supp",
		Level:   "nudge",
		Status:  model.InboxMissed,
		Reason:  model.ReasonQuietHours,
		Source:  "scheduler",
		SlotKey: "supp:2024-03-06:nudge:14:34",
	}
	inserted, err := is.Record(entry)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !inserted {
		t.Error("expected first record to insert")
	}

	inserted, err = is.Record(entry)
	if err != nil {
		t.Fatalf("record again: %v", err)
	}
	if inserted {
		t.Error("expected duplicate slot to be ignored")
	}

	entry.Status = model.InboxSent
	entry.Reason = ""
	if inserted, _ := is.Record(entry); !inserted {
		t.Error("expected a different status for the same slot to insert")
	}

	entries, err := is.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" {
			t.Error("entry missing id")
		}
		if e.DedupeKey != DedupeKey(e.Status, e.SlotKey) {
			t.Errorf("dedupe key = %q", e.DedupeKey)
		}
	}
}

func TestInboxReadAndPrune(t *testing.T) {
	is := setupInboxTestDB(t)
	old := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)

	is.Record(model.InboxEntry{ID: "old", Title: "Old", Type: "tip", Status: model.InboxSent, SlotKey: "tip:2024-01-01:3", CreatedAt: old})
	is.Record(model.InboxEntry{ID: "new", Title: "New", Type: "tip", Status: model.InboxSent, SlotKey: "tip:2024-03-06:3", CreatedAt: recent})

	if n, _ := is.UnreadCount(); n != 2 {
		t.Errorf("unread = %d, want 2", n)
	}
	if err := is.MarkRead("new"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n, _ := is.UnreadCount(); n != 1 {
		t.Errorf("unread = %d, want 1", n)
	}
	if err := is.MarkRead("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("mark missing err = %v, want ErrNotFound", err)
	}

	entries, _ := is.List(10)
	if len(entries) != 2 || entries[0].ID != "new" {
		t.Fatalf("expected newest first, got %+v", entries)
	}

	n, err := is.Prune(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}
}
