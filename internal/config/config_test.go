package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Timezone != "Local" {
		t.Errorf("timezone: got %q, want %q", cfg.Timezone, "Local")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level: got %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Forensic.WindowMinutes != 30 {
		t.Errorf("forensic window: got %d, want 30", cfg.Forensic.WindowMinutes)
	}
	if cfg.Forensic.SimilarLimit != 5 {
		t.Errorf("similar limit: got %d, want 5", cfg.Forensic.SimilarLimit)
	}
	if cfg.Forensic.VisualTop != 3 {
		t.Errorf("visual top: got %d, want 3", cfg.Forensic.VisualTop)
	}
	if cfg.Snapshot.WindowMinutes != 30 {
		t.Errorf("snapshot window: got %d, want 30", cfg.Snapshot.WindowMinutes)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("output format: got %q, want %q", cfg.Output.Format, "text")
	}
	if cfg.Debounce() != 750*time.Millisecond {
		t.Errorf("debounce: got %v, want 750ms", cfg.Debounce())
	}
	if filepath.Base(cfg.Database) != "journal.db" {
		t.Errorf("database: got %q", cfg.Database)
	}
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	if filepath.Base(path) != "config.toml" {
		t.Errorf("expected config.toml, got %q", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != "lifelens" {
		t.Errorf("expected lifelens dir, got %q", path)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Forensic.WindowMinutes != 30 {
		t.Errorf("expected defaults, got window %d", cfg.Forensic.WindowMinutes)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Database = "/tmp/journal.db"
	cfg.Timezone = "Europe/Berlin"
	cfg.Forensic.SimilarLimit = 9

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Database != "/tmp/journal.db" {
		t.Errorf("database: got %q", loaded.Database)
	}
	if loaded.Forensic.SimilarLimit != 9 {
		t.Errorf("similar limit: got %d, want 9", loaded.Forensic.SimilarLimit)
	}
	if loaded.Forensic.VisualTop != 3 {
		t.Errorf("visual top: got %d, want 3", loaded.Forensic.VisualTop)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[forensic]\nwindow_minutes = 45\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ForensicWindow() != 45*time.Minute {
		t.Errorf("forensic window: got %v, want 45m", cfg.ForensicWindow())
	}
	if cfg.SnapshotWindow() != 30*time.Minute {
		t.Errorf("snapshot window: got %v, want 30m", cfg.SnapshotWindow())
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("database = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LIFELENS_DB", "/data/override.db")
	t.Setenv("LIFELENS_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database != "/data/override.db" {
		t.Errorf("expected env override, got %q", cfg.Database)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected env override, got %q", cfg.Log.Level)
	}
}

func TestLocation(t *testing.T) {
	loc, err := Config{Timezone: "Local"}.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Local: got %v, %v", loc, err)
	}
	loc, err = Config{Timezone: "UTC"}.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("UTC: got %v, %v", loc, err)
	}
	if _, err := (Config{Timezone: "Mars/Olympus"}).Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
}
