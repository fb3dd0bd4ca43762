// Package obs holds the observability plumbing shared by the command
// binaries: structured logging and the optional metrics endpoint wiring.
package obs

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger builds the process logger. Development environments get colored
// text output; everything else logs JSON.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	writer := os.Stderr
	if env == "dev" || env == "local" {
		handler := tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
		return slog.New(handler)
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
