package config

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger. When file is set, output is also
// written to a rotated log file.
func NewLogger(env, file string) *slog.Logger {
	var out io.Writer = os.Stdout
	if file != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   file,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	return NewLoggerTo(env, out)
}

// NewLoggerTo builds a logger for env that writes only to out.
func NewLoggerTo(env string, out io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		AddSource: env == "development",
	}

	if env == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(out, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}
