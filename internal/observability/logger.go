package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns the process-wide structured logger. JSON output keeps
// log lines machine-parseable in container environments.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
