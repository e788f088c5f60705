package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking-api/internal/config"
)

// NewLogger returns a zerolog logger for the service. An empty format picks
// the console writer in development and JSON everywhere else. The returned
// closer is non-nil only when logging to a file.
func NewLogger(cfg config.LogConfig, env, version string) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil && cfg.Level != "" {
		level = parsed
	}

	out := io.Writer(os.Stdout)
	var closer io.Closer
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "stderr":
		out = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			return zerolog.Nop(), nil, fmt.Errorf("LOG_OUTPUT=file requires LOG_FILE")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" && (env == "dev" || env == "development") {
		format = "console"
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", "hotel-booking-api").
		Str("env", env).
		Str("version", version).
		Logger()
	return l, closer, nil
}
