package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/dukerupert/nestcue/internal/model"
)

// Preference setting keys.
const (
	keyNotificationsEnabled = "notifications_enabled"
	keyChannelReminders     = "channel_reminders"
	keyChannelCalendar      = "channel_calendar"
	keyChannelDailyTip      = "channel_daily_tip"
	keyChannelNames         = "channel_names"
	keyQuietHoursEnabled    = "quiet_hours_enabled"
	keyQuietHoursStart      = "quiet_hours_start"
	keyQuietHoursEnd        = "quiet_hours_end"
)

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetPreferences reads the notification preferences. Missing or
// unparseable keys fall back to the defaults.
func (s *SettingsStore) GetPreferences() (model.Preferences, error) {
	prefs := model.DefaultPreferences()
	all, err := s.GetAll()
	if err != nil {
		return prefs, err
	}

	boolKey := func(key string, dst *bool) {
		if v, ok := all[key]; ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	boolKey(keyNotificationsEnabled, &prefs.NotificationsEnabled)
	boolKey(keyChannelReminders, &prefs.Channels.Reminders)
	boolKey(keyChannelCalendar, &prefs.Channels.Calendar)
	boolKey(keyChannelDailyTip, &prefs.Channels.DailyTip)
	boolKey(keyChannelNames, &prefs.Channels.Names)
	boolKey(keyQuietHoursEnabled, &prefs.QuietHours.Enabled)
	if v := all[keyQuietHoursStart]; v != "" {
		prefs.QuietHours.Start = v
	}
	if v := all[keyQuietHoursEnd]; v != "" {
		prefs.QuietHours.End = v
	}
	return prefs, nil
}

// SetPreferences writes every preference key in one transaction.
func (s *SettingsStore) SetPreferences(p model.Preferences) error {
	values := map[string]string{
		keyNotificationsEnabled: strconv.FormatBool(p.NotificationsEnabled),
		keyChannelReminders:     strconv.FormatBool(p.Channels.Reminders),
		keyChannelCalendar:      strconv.FormatBool(p.Channels.Calendar),
		keyChannelDailyTip:      strconv.FormatBool(p.Channels.DailyTip),
		keyChannelNames:         strconv.FormatBool(p.Channels.Names),
		keyQuietHoursEnabled:    strconv.FormatBool(p.QuietHours.Enabled),
		keyQuietHoursStart:      p.QuietHours.Start,
		keyQuietHoursEnd:        p.QuietHours.End,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for key, value := range values {
		_, err := tx.Exec(
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now,
		)
		if err != nil {
			return fmt.Errorf("set setting %q: %w", key, err)
		}
	}
	return tx.Commit()
}
