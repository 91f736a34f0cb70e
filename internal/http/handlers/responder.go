package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/gamecast-service/internal/http/middleware"
	"github.com/preston-bernstein/gamecast-service/internal/http/requestutil"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(requestutil.HeaderRequestID)
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}

// NotFound writes the JSON 404 used for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	writeError(w, r, http.StatusNotFound, "not found", logger)
}

// MethodNotAllowed writes the JSON 405 used for known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", logger)
}
