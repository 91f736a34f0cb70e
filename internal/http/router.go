package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/preston-bernstein/gamecast-service/internal/http/handlers"
	"github.com/preston-bernstein/gamecast-service/internal/http/middleware"
	"github.com/preston-bernstein/gamecast-service/internal/http/requestutil"
	"github.com/preston-bernstein/gamecast-service/internal/metrics"
)

// RouterOptions carries the optional pieces mounted beside the read handlers.
type RouterOptions struct {
	Admin       *handlers.AdminHandler
	Overlay     nethttp.Handler
	CORSOrigins []string
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
}

// NewRouter registers HTTP routes on a chi router.
func NewRouter(handler *handlers.Handler, opts RouterOptions) nethttp.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(opts.Logger, opts.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestutil.HeaderRequestID},
		ExposedHeaders:   []string{requestutil.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)

	r.Get("/games", handler.Games)
	r.Get("/games/{id}", handler.Game)

	r.Get("/cards", handler.Cards)
	r.Get("/cards/{id}", handler.Card)

	r.Get("/teams", handler.Teams)
	r.Get("/teams/{abbr}", handler.Team)

	if opts.Overlay != nil {
		r.Handle("/overlay/ws", opts.Overlay)
	}
	if opts.Admin.Enabled() {
		r.Post("/admin/cards/{id}/clear", opts.Admin.ClearCard)
	}

	r.NotFound(func(w nethttp.ResponseWriter, req *nethttp.Request) {
		handlers.NotFound(w, req, opts.Logger)
	})
	r.MethodNotAllowed(func(w nethttp.ResponseWriter, req *nethttp.Request) {
		handlers.MethodNotAllowed(w, req, opts.Logger)
	})
	return r
}
