package logger

import (
	"io"
	"log/slog"
	"os"
)

var Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init installs the process logger. Debug output is enabled by the debug
// flag or DEBUG=true. LOG_FORMAT=json switches to JSON lines.
func Init(debug bool) *slog.Logger {
	debug = debug || os.Getenv("DEBUG") == "true"
	if os.Getenv("LOG_FORMAT") == "json" {
		Logger = NewJSON(os.Stdout, debug)
	} else {
		Logger = New(os.Stdout, debug)
	}
	slog.SetDefault(Logger)
	return Logger
}

// New builds a text logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, options(debug)))
}

// NewJSON builds a JSON logger writing to w.
func NewJSON(w io.Writer, debug bool) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, options(debug)))
}

func options(debug bool) *slog.HandlerOptions {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return &slog.HandlerOptions{
		Level: level,
	}
}
