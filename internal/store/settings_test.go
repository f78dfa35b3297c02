package store

import (
	"testing"

	"github.com/dukerupert/nestcue/internal/database"
	"github.com/dukerupert/nestcue/internal/model"
)

func setupSettingsTestDB(t *testing.T) *SettingsStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSettingsStore(db)
}

func TestSettingsSeedData(t *testing.T) {
	ss := setupSettingsTestDB(t)

	prefs, err := ss.GetPreferences()
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if prefs != model.DefaultPreferences() {
		t.Errorf("seeded preferences = %+v, want defaults %+v", prefs, model.DefaultPreferences())
	}
}

func TestSettingsPreferencesRoundTrip(t *testing.T) {
	ss := setupSettingsTestDB(t)

	want := model.Preferences{
		NotificationsEnabled: true,
		Channels:             model.Channels{Reminders: true, Calendar: false, DailyTip: false, Names: true},
		QuietHours:           model.QuietHours{Enabled: true, Start: "23:00", End: "06:30"},
	}
	if err := ss.SetPreferences(want); err != nil {
		t.Fatalf("set preferences: %v", err)
	}
	got, err := ss.GetPreferences()
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if got != want {
		t.Errorf("preferences = %+v, want %+v", got, want)
	}

	v, err := ss.Get("quiet_hours_start")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "23:00" {
		t.Errorf("quiet_hours_start = %q, want %q", v, "23:00")
	}
}

func TestSettingsBadValueFallsBack(t *testing.T) {
	ss := setupSettingsTestDB(t)

	if err := ss.Set("channel_names", "maybe"); err != nil {
		t.Fatalf("set: %v", err)
	}
	prefs, err := ss.GetPreferences()
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if !prefs.Channels.Names {
		t.Error("expected unparseable value to keep the default")
	}

	if _, err := ss.Get("nope"); err == nil {
		t.Error("expected error for missing key")
	}
}
