package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Init initializes the global slog logger. Format "console" installs a tinted
// handler for local development; anything else gets structured JSON.
func Init(writer io.Writer, level slog.Level, format string) {
	var handler slog.Handler
	if format == "console" {
		handler = tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				// Customize attribute keys for consistency if needed
				if a.Key == slog.TimeKey {
					a.Key = "timestamp"
				}
				if a.Key == slog.LevelKey {
					a.Key = "level"
				}
				if a.Key == slog.MessageKey {
					a.Key = "message"
				}
				return a
			},
		})
	}
	slog.SetDefault(slog.New(handler))
}
