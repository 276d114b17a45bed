// Package logging builds the zerolog logger shared by the session, catalog,
// store, watcher and CLI layers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Config selects level, format and destination.
type Config struct {
	// Level is a zerolog level name; empty means info.
	Level string

	// Format is FormatJSON or FormatPretty; empty means pretty.
	Format string

	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger for cfg.
func New(cfg Config) (zerolog.Logger, error) {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	switch strings.ToLower(cfg.Format) {
	case FormatJSON:
	case FormatPretty, "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q (expected %s or %s)", cfg.Format, FormatJSON, FormatPretty)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Component returns l tagged with a component field.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
