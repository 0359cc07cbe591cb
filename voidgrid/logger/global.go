package logger

import (
	"log/slog"
	"os"
	"time"
)

// Setup installs the process-wide default logger. The colored handler is the
// default; "json" switches to machine-readable output for log shippers.
func Setup(level slog.Level, format string, addSource bool) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: addSource,
		})
	} else {
		handler = NewHandler(level, addSource)
	}
	slog.SetDefault(slog.New(handler))
}

// LogEvent logs a processed progression event for an address.
func LogEvent(kind, address string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", kind),
		slog.String("address", address),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Event failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Event processed", attrs...)
	}
}
