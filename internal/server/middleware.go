package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/me/covweb/internal/logging"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// requestIDMiddleware generates a request_id and stores it in context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := requestID()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware writes one line per request. Thumbnail and video fetches
// are logged at DEBUG since every listing card issues one. Attributes added
// downstream with logging.AddRequestAttrs (the UI session, for example) are
// appended to the line.
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			ctx := logging.WithRequestAttrs(r.Context())

			next.ServeHTTP(sw, r.WithContext(ctx))

			level := slog.LevelInfo
			if isMediaPath(r.URL.Path) && sw.status < http.StatusBadRequest {
				level = slog.LevelDebug
			}
			args := []any{
				"ip", r.RemoteAddr,
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
				"request_id", RequestIDFromContext(ctx),
			}
			logger.Log(ctx, level, "request", append(args, logging.RequestAttrs(ctx)...)...)
		})
	}
}

func isMediaPath(p string) bool {
	return strings.HasPrefix(p, "/thumbnail/") || strings.HasPrefix(p, "/video/")
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
