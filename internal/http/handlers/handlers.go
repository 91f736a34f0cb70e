package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/gamecast-service/internal/animation"
	"github.com/preston-bernstein/gamecast-service/internal/domain/games"
	"github.com/preston-bernstein/gamecast-service/internal/domain/teams"
	"github.com/preston-bernstein/gamecast-service/internal/poller"
	"github.com/preston-bernstein/gamecast-service/internal/realtime"
)

const defaultLeague = "nfl"

// GamesService is the read side of the gamecast service.
type GamesService interface {
	Games() []games.Snapshot
	Game(id string) (games.Snapshot, bool)
}

// CardQueues exposes the animation scheduler's per-card queues.
type CardQueues interface {
	Cards() []string
	Snapshot(cardID string) (animation.QueueSnapshot, bool)
	Clear(cardID string)
}

// TeamDirectory lists and resolves teams.
type TeamDirectory interface {
	Teams(league string) []teams.Team
	TeamByAbbreviation(league, abbreviation string) (teams.Team, bool)
}

// Transport reports the push connection's state.
type Transport interface {
	State() realtime.State
	Subscriptions() []string
	FallbackStatus() (poller.Status, bool)
}

// Deps groups the collaborators a Handler reads from. Nil members disable their routes' data.
type Deps struct {
	Games     GamesService
	Cards     CardQueues
	Teams     TeamDirectory
	Transport Transport
	Logger    *slog.Logger
}

// Handler wires HTTP routes to the gamecast components.
type Handler struct {
	games     GamesService
	cards     CardQueues
	teams     TeamDirectory
	transport Transport
	logger    *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		games:     deps.Games,
		cards:     deps.Cards,
		teams:     deps.Teams,
		transport: deps.Transport,
		logger:    deps.Logger,
	}
}

// GamesResponse lists the latest snapshot of every known game.
type GamesResponse struct {
	Count int              `json:"count"`
	Games []games.Snapshot `json:"games"`
}

// ReadyResponse describes the push transport behind readiness.
type ReadyResponse struct {
	Status        string         `json:"status"`
	Transport     realtime.State `json:"transport"`
	Subscriptions []string       `json:"subscriptions"`
	Fallback      *poller.Status `json:"fallback,omitempty"`
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness: connected, or serving from a healthy fallback poller.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.transport == nil {
		writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready", Subscriptions: []string{}}, h.logger)
		return
	}

	resp := ReadyResponse{
		Status:        "ready",
		Transport:     h.transport.State(),
		Subscriptions: h.transport.Subscriptions(),
	}
	if resp.Subscriptions == nil {
		resp.Subscriptions = []string{}
	}
	if status, ok := h.transport.FallbackStatus(); ok {
		resp.Fallback = &status
	}

	switch resp.Transport {
	case realtime.StateConnected:
		writeJSON(w, http.StatusOK, resp, h.logger)
		return
	case realtime.StateFallbackPolling:
		if resp.Fallback != nil && resp.Fallback.IsReady() {
			writeJSON(w, http.StatusOK, resp, h.logger)
			return
		}
	}

	resp.Status = "not ready"
	writeJSON(w, http.StatusServiceUnavailable, resp, h.logger)
}

// Games returns the latest snapshot of each game, optionally filtered by ?league=.
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	if h.games == nil {
		writeError(w, r, http.StatusServiceUnavailable, "games unavailable", h.logger)
		return
	}
	league := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("league")))

	list := make([]games.Snapshot, 0)
	for _, g := range h.games.Games() {
		if league != "" && !strings.EqualFold(g.League, league) {
			continue
		}
		list = append(list, g)
	}

	writeJSON(w, http.StatusOK, GamesResponse{Count: len(list), Games: list}, h.logger)
}

// Game returns one game's latest snapshot.
func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "invalid game id", h.logger)
		return
	}
	if h.games == nil {
		writeError(w, r, http.StatusServiceUnavailable, "games unavailable", h.logger)
		return
	}
	game, ok := h.games.Game(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "game not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, game, h.logger)
}

// Cards lists the ids of cards attached to the scheduler.
func (h *Handler) Cards(w http.ResponseWriter, r *http.Request) {
	ids := []string{}
	if h.cards != nil {
		ids = append(ids, h.cards.Cards()...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(ids), "cards": ids}, h.logger)
}

// Card returns a card's animation queue: the active task and what is waiting behind it.
func (h *Handler) Card(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "invalid card id", h.logger)
		return
	}
	if h.cards == nil {
		writeError(w, r, http.StatusNotFound, "card not found", h.logger)
		return
	}
	snap, ok := h.cards.Snapshot(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "card not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, snap, h.logger)
}

// Teams lists teams for ?league= (default nfl).
func (h *Handler) Teams(w http.ResponseWriter, r *http.Request) {
	if h.teams == nil {
		writeError(w, r, http.StatusServiceUnavailable, "teams unavailable", h.logger)
		return
	}
	league := leagueParam(r)
	list := h.teams.Teams(league)
	writeJSON(w, http.StatusOK, map[string]any{"league": league, "count": len(list), "teams": list}, h.logger)
}

// Team resolves one team by abbreviation within ?league= (default nfl).
func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	abbr := strings.TrimSpace(chi.URLParam(r, "abbr"))
	if abbr == "" {
		writeError(w, r, http.StatusBadRequest, "invalid team abbreviation", h.logger)
		return
	}
	if h.teams == nil {
		writeError(w, r, http.StatusServiceUnavailable, "teams unavailable", h.logger)
		return
	}
	team, ok := h.teams.TeamByAbbreviation(leagueParam(r), abbr)
	if !ok {
		writeError(w, r, http.StatusNotFound, "team not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, team, h.logger)
}

func leagueParam(r *http.Request) string {
	league := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("league")))
	if league == "" {
		return defaultLeague
	}
	return league
}
