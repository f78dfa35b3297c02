package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/nestcue/internal/model"
	"github.com/google/uuid"
)

// InboxStore keeps a history of fired and missed notifications.
type InboxStore struct {
	db *sql.DB
}

func NewInboxStore(db *sql.DB) *InboxStore {
	return &InboxStore{db: db}
}

// DedupeKey is the inbox key for a slot outcome.
func DedupeKey(status, slotKey string) string {
	return status + ":" + slotKey
}

// Record inserts e unless an entry with the same dedupe key exists. It
// reports whether a row was written.
func (s *InboxStore) Record(e model.InboxEntry) (bool, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.DedupeKey == "" {
		e.DedupeKey = DedupeKey(e.Status, e.SlotKey)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO inbox (id, title, body, type, level, status, reason, source, slot_key, dedupe_key, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Body, e.Type, e.Level, e.Status, e.Reason, e.Source, e.SlotKey, e.DedupeKey, e.Read, e.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("record inbox entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// List returns the newest entries first.
func (s *InboxStore) List(limit int) ([]model.InboxEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT id, title, body, type, level, status, reason, source, slot_key, dedupe_key, read, created_at
		 FROM inbox ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	defer rows.Close()

	var entries []model.InboxEntry
	for rows.Next() {
		var e model.InboxEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Body, &e.Type, &e.Level, &e.Status, &e.Reason,
			&e.Source, &e.SlotKey, &e.DedupeKey, &e.Read, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *InboxStore) MarkRead(id string) error {
	result, err := s.db.Exec(`UPDATE inbox SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark inbox read: %w", err)
	}
	return requireRow(result)
}

func (s *InboxStore) UnreadCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM inbox WHERE read = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread inbox: %w", err)
	}
	return n, nil
}

// Prune deletes entries created before the given time.
func (s *InboxStore) Prune(before time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM inbox WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune inbox: %w", err)
	}
	return result.RowsAffected()
}
