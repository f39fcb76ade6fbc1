package api

import (
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shelfkeep/shelfkeep-server/internal/http/response"
)

// recoverer turns a panic into a logged 500 with the standard error envelope.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("stack", string(debug.Stack())),
				)
				response.InternalError(w, "internal server error", logger)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request once the response is written.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_ip", r.RemoteAddr),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// rateLimitAuth is a huma operation middleware limiting credential endpoints
// per client IP. It rejects with 429 before the body is even parsed.
func (s *Server) rateLimitAuth(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.RemoteAddr())
	if !s.authRateLimiter.Allow(key) {
		s.logger.Warn("rate limit exceeded",
			slog.String("ip", key),
			slog.String("operation", ctx.Operation().OperationID),
		)
		s.metrics.rateLimited.WithLabelValues(ctx.Operation().OperationID).Inc()
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests, please try again later")
		return
	}
	next(ctx)
}

// clientIP strips the port from a remote address. RealIP has already applied
// X-Forwarded-For and X-Real-IP by the time this runs.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
