// Package logger wraps log/slog with a process-wide logger and a per-request
// logger carried through context.
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", order.ID)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 order_id=1
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/shashiranjanraj/thali/config"
)

// L is the base logger. It is replaced by Setup and AttachSink.
var L *slog.Logger

var mu sync.Mutex

func init() {
	Setup(os.Stdout, config.IsProduction())
}

// Setup installs the base logger writing to w. Production gets JSON at INFO,
// everything else human-readable text at DEBUG.
func Setup(w io.Writer, production bool) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	L = slog.New(newHandler(w, production))
	slog.SetDefault(L)
	return L
}

func newHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// AttachSink fans the base logger out to an additional handler.
func AttachSink(h slog.Handler) {
	mu.Lock()
	defer mu.Unlock()

	L = slog.New(NewMultiHandler(L.Handler(), h))
	slog.SetDefault(L)
}

// AttachMongo connects a MongoHandler when uri is non-empty. The returned
// func flushes and disconnects; it is a no-op when nothing was attached.
func AttachMongo(uri, db string) (func(), error) {
	if uri == "" {
		return func() {}, nil
	}

	h, err := NewMongoHandler(uri, db, "logs")
	if err != nil {
		return func() {}, err
	}
	AttachSink(h)
	return h.Close, nil
}

type ctxKey struct{}

// WithCtx returns the request logger stored by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }

// LevelFor maps an HTTP status to the level its access log line uses.
func LevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
