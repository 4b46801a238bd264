// Package logger provides the structured, levelled logger used across the
// storefront client. It is a thin layer over log/slog:
//
//	log := logger.WithCtx(ctx)
//	log.Info("cart updated", "items", 3)
//	// → time=... level=INFO msg="cart updated" request_id=9f1c... items=3
//
// Production builds emit JSON; every other environment emits text. When
// LOG_MONGO_URI is configured, Setup tees every record into MongoDB too.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/storefront/config"
)

// L is the process-wide base logger. Components receive it (or a child of it)
// through their constructors; the package-level helpers use it directly.
var L = New(config.AppEnv(), os.Stderr)

// New builds a logger for env writing to w. Extra handlers receive every
// record as well.
func New(env string, w io.Writer, extra ...slog.Handler) *slog.Logger {
	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "testing", "test":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Setup installs L as the slog default, attaching the MongoDB sink when
// configured. The returned func flushes and disconnects the sink.
func Setup() (func(), error) {
	uri := config.LogMongoURI()
	if uri == "" {
		slog.SetDefault(L)
		return func() {}, nil
	}

	sink, err := DialMongo(context.Background(), uri, "storefront", "client_logs")
	if err != nil {
		slog.SetDefault(L)
		return func() {}, err
	}

	L = New(config.AppEnv(), os.Stderr, sink)
	slog.SetDefault(L)
	return sink.Close, nil
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log into ctx so downstream calls share its attributes.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
