// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Level names accepted in config.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelDebug:
		return zerolog.DebugLevel, nil
	case "", LevelInfo:
		return zerolog.InfoLevel, nil
	case LevelWarn, "warning":
		return zerolog.WarnLevel, nil
	case LevelError:
		return zerolog.ErrorLevel, nil
	}
	return zerolog.InfoLevel, fmt.Errorf("logging: unknown level %q", s)
}

// Setup points the global logger at stderr. Stdout stays free for command
// output and the MCP stdio transport. A terminal gets the console writer,
// anything else gets JSON lines.
func Setup(level string, color bool) error {
	fd := int(os.Stderr.Fd())
	return SetupWriter(os.Stderr, level, term.IsTerminal(fd), color)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, level string, console, color bool) error {
	lvl, err := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	out := w
	if console {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: !color}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", "lifelens").Logger()
	return err
}
