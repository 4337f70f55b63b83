// Package config manages the lifelens configuration file
// (~/.config/lifelens/config.toml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds user-wide settings.
type Config struct {
	Database string         `toml:"database"`
	Timezone string         `toml:"timezone"`
	Log      LogConfig      `toml:"log"`
	Forensic ForensicConfig `toml:"forensic"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Output   OutputConfig   `toml:"output"`
	Watch    WatchConfig    `toml:"watch"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// ForensicConfig tunes the forensic zoom.
type ForensicConfig struct {
	WindowMinutes int `toml:"window_minutes"`
	SimilarLimit  int `toml:"similar_limit"`
	VisualTop     int `toml:"visual_top"`
}

type SnapshotConfig struct {
	WindowMinutes int `toml:"window_minutes"`
}

type OutputConfig struct {
	Format string `toml:"format"`
	Color  bool   `toml:"color"`
}

// WatchConfig controls `lifelens watch`.
type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Database: DefaultDBPath(),
		Timezone: "Local",
		Log:      LogConfig{Level: "info"},
		Forensic: ForensicConfig{
			WindowMinutes: 30,
			SimilarLimit:  5,
			VisualTop:     3,
		},
		Snapshot: SnapshotConfig{WindowMinutes: 30},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Watch: WatchConfig{DebounceMS: 750},
	}
}

// Dir returns ~/.config/lifelens.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lifelens"
	}
	return filepath.Join(home, ".config", "lifelens")
}

// DefaultPath returns the path to the config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultDBPath returns the default journal database path.
func DefaultDBPath() string {
	return filepath.Join(Dir(), "journal.db")
}

// Load reads the config at path (DefaultPath when empty), applying defaults
// for missing values and then environment overrides. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: load %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("config: stat %s: %w", path, err)
	}

	if v := os.Getenv("LIFELENS_DB"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("LIFELENS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LIFELENS_TZ"); v != "" {
		cfg.Timezone = v
	}
	return cfg, nil
}

// Save writes cfg to path (DefaultPath when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Location resolves the configured time zone. "" and "Local" mean the
// system zone.
func (c Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ForensicWindow is the configured neighbour window.
func (c Config) ForensicWindow() time.Duration {
	return time.Duration(c.Forensic.WindowMinutes) * time.Minute
}

// SnapshotWindow is the configured moment snapshot window.
func (c Config) SnapshotWindow() time.Duration {
	return time.Duration(c.Snapshot.WindowMinutes) * time.Minute
}

// Debounce is the watch debounce interval.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
