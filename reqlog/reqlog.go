// Package reqlog tags each request with an ID and logs its outcome.
package reqlog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const HeaderName = "X-Request-ID"

type contextKey int

const loggerKey contextKey = 0

func New(log *slog.Logger, next http.Handler) *Handler {
	return &Handler{
		Log:  log,
		Next: next,
	}
}

type Handler struct {
	Log  *slog.Logger
	Next http.Handler
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(HeaderName)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	w.Header().Set(HeaderName, id)

	log := h.Log.With(slog.String("requestID", id))
	r = r.WithContext(context.WithValue(r.Context(), loggerKey, log))

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	h.Next.ServeHTTP(sw, r)
	log.Info("request complete",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", sw.status),
		slog.Duration("duration", time.Since(start)))
}

// Logger returns the request scoped logger, or fallback if the request did
// not pass through the middleware.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return log
	}
	return fallback
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(status int) {
	if !sw.wroteHeader {
		sw.status = status
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
