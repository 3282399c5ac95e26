package runner

import (
	"log/slog"
	"os"
)

// NewLogger builds the run-scoped structured logger, at debug level when
// verbose is set and info level otherwise.
func NewLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
