// Where: internal/log/logger.go
// What: Structured diagnostic logger.
// Why: Keep debug traces on stderr and out of the user-facing console output.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/poruru-code/tutor-newrelic/internal/meta"
)

// Config captures options for configuring the base logger.
type Config struct {
	Level  string    // optional log level ("debug", "info", etc.)
	Output io.Writer // optional writer (defaults to os.Stderr)
}

var (
	mu   sync.Mutex
	base = newLogger(Config{})
)

// Configure replaces the base logger. Later calls win.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(cfg)
}

func newLogger(cfg Config) zerolog.Logger {
	level := zerolog.WarnLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	} else if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}

	writer := cfg.Output
	if writer == nil {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	return zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("app", meta.AppName).
		Logger()
}

// Base returns the configured base logger instance.
func Base() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
