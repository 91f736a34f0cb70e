package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/gamecast-service/internal/http/requestutil"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
	"github.com/preston-bernstein/gamecast-service/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Logging returns chi-compatible middleware that assigns a request ID, scopes a logger to the
// request, and records status and latency once the handler returns.
func Logging(baseLogger *slog.Logger, recorder *metrics.Recorder) func(http.Handler) http.Handler {
	if baseLogger == nil {
		baseLogger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := requestutil.SanitizeRequestID(r.Header.Get(requestutil.HeaderRequestID))
			w.Header().Set(requestutil.HeaderRequestID, reqID)

			logger := baseLogger.With(
				slog.String(logging.FieldRequestID, reqID),
				slog.String(logging.FieldMethod, r.Method),
				slog.String(logging.FieldPath, r.URL.Path),
				slog.String("client_ip", requestutil.ClientIP(r)),
			)

			ctx := logging.WithLogger(r.Context(), logger)
			ctx = withRequestID(ctx, reqID)
			r = r.WithContext(ctx)

			m := httpsnoop.CaptureMetrics(next, w, r)

			recorder.RecordHTTPRequest(r.Method, routeLabel(r), m.Code, m.Duration)
			logger.Info("request complete",
				slog.Int(logging.FieldStatusCode, m.Code),
				slog.Int64(logging.FieldDurationMS, m.Duration.Milliseconds()),
				slog.Int64("bytes", m.Written),
			)
		})
	}
}

// routeLabel keeps metric cardinality bounded by using the matched chi pattern.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

type requestIDKey struct{}

// RequestIDFromContext extracts the request ID stored by the logging middleware.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(requestIDKey{}).(string); ok {
		return val
	}
	return ""
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
