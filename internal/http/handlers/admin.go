package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/gamecast-service/internal/http/requestutil"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
)

// AdminHandler exposes operator endpoints guarded by a bearer token.
type AdminHandler struct {
	cards  CardQueues
	token  string
	logger *slog.Logger
}

// NewAdminHandler constructs an AdminHandler. An empty token rejects every request.
func NewAdminHandler(cards CardQueues, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		cards:  cards,
		token:  token,
		logger: logger,
	}
}

// Enabled reports whether a token is configured.
func (h *AdminHandler) Enabled() bool {
	return h != nil && h.token != ""
}

// ClearCard drops a card's queued and in-flight effects. The card stays attached.
func (h *AdminHandler) ClearCard(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return
	}
	if h.cards == nil {
		writeError(w, r, http.StatusServiceUnavailable, "scheduler not configured", h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	before, ok := h.cards.Snapshot(id)
	if id == "" || !ok {
		writeError(w, r, http.StatusNotFound, "card not found", logger)
		return
	}

	h.cards.Clear(id)

	dropped := len(before.Pending)
	if before.Active != nil {
		dropped++
	}
	logging.Info(logger, "admin cleared card",
		slog.String(logging.FieldCardID, id),
		slog.Int(logging.FieldCount, dropped),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"cardId":  id,
		"dropped": dropped,
		"status":  "cleared",
	}, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	token, ok := requestutil.BearerToken(r)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}
