package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process default logger. debug enables the
// request-level logs the resty instrumentation emits.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
