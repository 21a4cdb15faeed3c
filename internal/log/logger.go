package log

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures the loggers built by NewLogger.
type Options struct {
	// Verbose logs at Debug level. Otherwise only warnings and errors are logged.
	Verbose bool
	// JSON switches to the slog JSON handler.
	JSON bool
	// NoColor disables ANSI colors in text output.
	NoColor bool
}

func (o Options) level() slog.Level {
	if o.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger returns a logger writing to w through a SecureHandler.
// Text output uses tint.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.level()})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      opts.level(),
			TimeFormat: time.TimeOnly,
			NoColor:    opts.NoColor,
		})
	}
	return slog.New(NewSecureHandler(handler))
}
