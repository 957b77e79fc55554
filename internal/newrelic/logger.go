// Where: internal/newrelic/logger.go
// What: resty logger backed by zerolog.
// Why: Keep HTTP client warnings in the CLI's structured log stream.
package newrelic

import (
	"strings"

	"github.com/rs/zerolog"
)

type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
