package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/go-chi/chi/v5/middleware"
)

var current atomic.Pointer[slog.Logger]

// InitLogger installs the process logger at info level: JSON in
// production, logfmt-style text otherwise
func InitLogger(production bool) {
	InitLoggerWithLevel(production, slog.LevelInfo)
}

// InitLoggerWithLevel installs the process logger writing to stdout
func InitLoggerWithLevel(production bool, level slog.Level) {
	SetLogger(newLogger(os.Stdout, production, level))
}

func newLogger(w io.Writer, production bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if production {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetLogger replaces the process logger and slog's default
func SetLogger(l *slog.Logger) {
	current.Store(l)
	if l != nil {
		slog.SetDefault(l)
	}
}

// Logger returns the process logger, installing a text logger if none is set
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	current.CompareAndSwap(nil, newLogger(os.Stdout, false, slog.LevelInfo))
	return current.Load()
}

// WithContext returns a logger carrying the chi request id, when present
func WithContext(ctx context.Context) *slog.Logger {
	l := Logger()
	if ctx == nil {
		return l
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return l.With("request_id", reqID)
	}
	return l
}

func Info(msg string, args ...any) { Logger().Info(msg, args...) }
func Warn(msg string, args ...any) { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// WithSymbol tags log lines about one ticker
func WithSymbol(symbol string) *slog.Logger {
	return Logger().With("symbol", symbol)
}

// WithComponent tags log lines with the emitting subsystem
func WithComponent(component string) *slog.Logger {
	return Logger().With("component", component)
}
