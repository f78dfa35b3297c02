package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/nestcue/internal/database"
	"github.com/dukerupert/nestcue/internal/model"
)

const subscriptionColumns = `id, user_id, device_id, endpoint, p256dh_key, auth_key, pending_reminders,
	last_push_at, enabled, notif_enabled, created_at, updated_at`

// PushStore holds the relay's push_subscriptions rows. It runs on SQLite or
// Postgres; queries are written with ? and rebound per dialect.
type PushStore struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewPushStore(db *sql.DB, dialect database.Dialect) *PushStore {
	return &PushStore{db: db, dialect: dialect}
}

func (s *PushStore) q(query string) string {
	return database.Rebind(s.dialect, query)
}

// Upsert stores a device's subscription and re-enables it. Pending reminders
// are left untouched.
func (s *PushStore) Upsert(userID, deviceID string, sub model.WebPushSubscription, notifEnabled bool) (*model.PushSubscription, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(s.q(
		`INSERT INTO push_subscriptions (user_id, device_id, endpoint, p256dh_key, auth_key, enabled, notif_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, device_id) DO UPDATE SET endpoint = excluded.endpoint, p256dh_key = excluded.p256dh_key,
		 auth_key = excluded.auth_key, enabled = excluded.enabled, notif_enabled = excluded.notif_enabled,
		 updated_at = excluded.updated_at`),
		userID, deviceID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, true, notifEnabled, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert push subscription: %w", err)
	}
	return s.Get(userID, deviceID)
}

// ReplaceReminders swaps the whole pending list for a device. It returns
// ErrNotFound when the device never subscribed.
func (s *PushStore) ReplaceReminders(userID, deviceID string, items []model.UpcomingItem, notifEnabled bool) error {
	raw, err := encodeReminders(items)
	if err != nil {
		return err
	}
	result, err := s.db.Exec(s.q(
		`UPDATE push_subscriptions SET pending_reminders = ?, notif_enabled = ?, updated_at = ?
		 WHERE user_id = ? AND device_id = ?`),
		raw, notifEnabled, time.Now().UTC(), userID, deviceID,
	)
	if err != nil {
		return fmt.Errorf("replace reminders: %w", err)
	}
	return requireRow(result)
}

func (s *PushStore) Get(userID, deviceID string) (*model.PushSubscription, error) {
	row := s.db.QueryRow(s.q(
		`SELECT `+subscriptionColumns+` FROM push_subscriptions WHERE user_id = ? AND device_id = ?`),
		userID, deviceID,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return sub, nil
}

// ListByUser returns every subscription a user registered, newest first.
func (s *PushStore) ListByUser(userID string) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(s.q(
		`SELECT `+subscriptionColumns+` FROM push_subscriptions WHERE user_id = ? ORDER BY created_at DESC, id DESC`), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions by user: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// ListActive returns enabled subscriptions that still hold reminders.
func (s *PushStore) ListActive() ([]model.PushSubscription, error) {
	rows, err := s.db.Query(s.q(
		`SELECT `+subscriptionColumns+` FROM push_subscriptions
		 WHERE enabled = ? AND pending_reminders <> '[]' ORDER BY id`), true,
	)
	if err != nil {
		return nil, fmt.Errorf("list active push subscriptions: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// dispatchAttempts bounds the retries when an upload races a dispatch write.
const dispatchAttempts = 5

// RemoveDispatched drops the fired items from a subscription's current
// pending list and records the push time. The write only lands if the list
// is unchanged since it was read, so a schedule uploaded during a dispatch
// pass is kept. Items match on tag and fire time.
func (s *PushStore) RemoveDispatched(id int64, fired []model.UpcomingItem, lastPushAt *time.Time) error {
	var last sql.NullTime
	if lastPushAt != nil {
		last = sql.NullTime{Time: lastPushAt.UTC(), Valid: true}
	}
	for range dispatchAttempts {
		var current string
		err := s.db.QueryRow(s.q(`SELECT pending_reminders FROM push_subscriptions WHERE id = ?`), id).Scan(&current)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read pending reminders: %w", err)
		}
		var items []model.UpcomingItem
		if err := json.Unmarshal([]byte(current), &items); err != nil {
			items = nil
		}
		raw, err := encodeReminders(withoutFired(items, fired))
		if err != nil {
			return err
		}
		result, err := s.db.Exec(s.q(
			`UPDATE push_subscriptions SET pending_reminders = ?, last_push_at = COALESCE(?, last_push_at), updated_at = ?
			 WHERE id = ? AND pending_reminders = ?`),
			raw, last, time.Now().UTC(), id, current,
		)
		if err != nil {
			return fmt.Errorf("save dispatch: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			return nil
		}
	}
	return fmt.Errorf("save dispatch %d: pending reminders kept changing", id)
}

func withoutFired(items, fired []model.UpcomingItem) []model.UpcomingItem {
	type slot struct {
		tag    string
		fireAt int64
	}
	gone := make(map[slot]bool, len(fired))
	for _, it := range fired {
		gone[slot{it.Tag, it.FireAt.UnixNano()}] = true
	}
	kept := make([]model.UpcomingItem, 0, len(items))
	for _, it := range items {
		if !gone[slot{it.Tag, it.FireAt.UnixNano()}] {
			kept = append(kept, it)
		}
	}
	return kept
}

// Disable turns a subscription off after its push service reported it gone.
func (s *PushStore) Disable(id int64) error {
	_, err := s.db.Exec(s.q(`UPDATE push_subscriptions SET enabled = ?, updated_at = ? WHERE id = ?`),
		false, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("disable push subscription: %w", err)
	}
	return nil
}

func encodeReminders(items []model.UpcomingItem) (string, error) {
	if items == nil {
		items = []model.UpcomingItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode reminders: %w", err)
	}
	return string(raw), nil
}

func scanSubscriptions(rows *sql.Rows) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(r rowScanner) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	var pending string
	var last sql.NullTime
	err := r.Scan(&sub.ID, &sub.UserID, &sub.DeviceID, &sub.Subscription.Endpoint, &sub.Subscription.Keys.P256dh,
		&sub.Subscription.Keys.Auth, &pending, &last, &sub.Enabled, &sub.NotifEnabled, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(pending), &sub.PendingReminders); err != nil {
		sub.PendingReminders = nil
	}
	if last.Valid {
		t := last.Time
		sub.LastPushAt = &t
	}
	return &sub, nil
}
