package logkafka

import (
	"net"
	"net/http"
	"strings"
	"time"

	"go_trial/cravewave/middleware"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TraceHeader carries the request trace id in and out.
const TraceHeader = "X-Trace-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

// LoggingMiddleware logs one line per request and attaches the request logger
// to the context for zerolog.Ctx. Mount it inside middleware.Authenticate so
// the user id is known.
func LoggingMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}
			w.Header().Set(TraceHeader, traceID)

			reqLog := log.With().Str("trace_id", traceID).Str("module", "http").Logger()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(reqLog.WithContext(r.Context())))

			userID := "anonymous"
			if actor, ok := middleware.ActorFrom(r.Context()); ok {
				userID = actor.UserID
			}

			ev := reqLog.Info()
			if rw.statusCode >= http.StatusInternalServerError {
				ev = reqLog.Error()
			}
			ev.Str("user_id", userID).
				Str("ip", clientIP(r)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Str("user_agent", r.UserAgent()).
				Msg("request completed")
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
