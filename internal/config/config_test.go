package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Agent.TickInterval != 45*time.Second {
		t.Errorf("TickInterval = %v, want 45s", cfg.Agent.TickInterval)
	}
	if !cfg.Agent.MarkFailedAsSent {
		t.Error("MarkFailedAsSent should default to true")
	}
	if cfg.Priorities.Supplement.Urgent != 5.0 {
		t.Errorf("supplement urgent = %v, want 5.0", cfg.Priorities.Supplement.Urgent)
	}
	if cfg.Priorities.Name != 0.8 {
		t.Errorf("name priority = %v, want 0.8", cfg.Priorities.Name)
	}
	if cfg.Relay.DispatchSpec != "@every 1m" {
		t.Errorf("DispatchSpec = %q", cfg.Relay.DispatchSpec)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NESTCUE_LOG_LEVEL", "debug")
	t.Setenv("NESTCUE_AGENT_TICK_INTERVAL", "10s")
	t.Setenv("NESTCUE_AGENT_MARK_FAILED_AS_SENT", "false")
	t.Setenv("NESTCUE_PRIORITIES_WORK_NUDGE", "9.5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Agent.TickInterval != 10*time.Second {
		t.Errorf("TickInterval = %v, want 10s", cfg.Agent.TickInterval)
	}
	if cfg.Agent.MarkFailedAsSent {
		t.Error("MarkFailedAsSent should be false")
	}
	if cfg.Priorities.Work.Nudge != 9.5 {
		t.Errorf("work nudge = %v, want 9.5", cfg.Priorities.Work.Nudge)
	}
}

func TestLoadFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "db_path: /tmp/x.db\nagent:\n  locale: ko\n  timezone: Asia/Seoul\nrelay:\n  url: https://relay.example\n"
	path := filepath.Join(dir, "nestcue.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NESTCUE_RELAY_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("NESTCUE_RELAY_TOKEN") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Agent.Locale != "ko" {
		t.Errorf("Locale = %q, want ko", cfg.Agent.Locale)
	}
	if cfg.Relay.URL != "https://relay.example" {
		t.Errorf("Relay.URL = %q", cfg.Relay.URL)
	}
	if cfg.Relay.Token != "from-dotenv" {
		t.Errorf("Relay.Token = %q, want from-dotenv", cfg.Relay.Token)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Asia/Seoul" {
		t.Errorf("Location = %s", loc)
	}
}

func TestLoadBadTimezone(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NESTCUE_AGENT_TIMEZONE", "Mars/Olympus")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load("/nonexistent/nestcue.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
