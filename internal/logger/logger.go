package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with the component name. The level comes from
// LOG_LEVEL (debug/info/warn/error), defaulting to info.
func New(service string) zerolog.Logger {
	level := zerolog.InfoLevel
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(envLevel)); err == nil {
			level = parsed
		}
	}

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
