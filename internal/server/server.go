package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/preston-bernstein/gamecast-service/internal/animation"
	"github.com/preston-bernstein/gamecast-service/internal/app/gamecast"
	appteams "github.com/preston-bernstein/gamecast-service/internal/app/teams"
	"github.com/preston-bernstein/gamecast-service/internal/config"
	"github.com/preston-bernstein/gamecast-service/internal/domain/teams"
	httpserver "github.com/preston-bernstein/gamecast-service/internal/http"
	"github.com/preston-bernstein/gamecast-service/internal/http/handlers"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
	"github.com/preston-bernstein/gamecast-service/internal/metrics"
	"github.com/preston-bernstein/gamecast-service/internal/overlay"
	"github.com/preston-bernstein/gamecast-service/internal/plays"
	"github.com/preston-bernstein/gamecast-service/internal/providers"
	"github.com/preston-bernstein/gamecast-service/internal/realtime"
	"github.com/preston-bernstein/gamecast-service/internal/store"
	"github.com/preston-bernstein/gamecast-service/internal/timeutil"
)

var metricsSetup = metrics.Setup

// Transport is the push connection the server drives.
type Transport interface {
	handlers.Transport
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, sports []string) error
	Disconnect()
}

// Server owns every long-lived component and their lifecycle.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.MemoryStore
	scheduler     *animation.Scheduler
	hub           *overlay.Hub
	service       *gamecast.Service
	transport     Transport
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
	closeProvider func() error

	// tracks the background connect so shutdown can wait for it
	wg sync.WaitGroup
}

// deps lets tests swap the edges of the graph without touching the wiring in between.
type deps struct {
	provider providers.SnapshotProvider
	recorder *metrics.Recorder
	dialer   realtime.Dialer
	clock    timeutil.Clock
}

// New constructs a server from configuration.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return build(cfg, logger, deps{})
}

func build(cfg config.Config, logger *slog.Logger, d deps) *Server {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{Service: "gamecast-service"})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, d.recorder)

	factory := newProviderFactory(logger, recorder)
	provider, closeProvider := d.provider, func() error { return nil }
	if provider == nil {
		provider, closeProvider = factory.build(cfg)
	} else {
		provider = providers.NewRetryingProvider(provider, logger, recorder, normalizeProviderName(cfg.Provider.Name), 0, 0)
	}

	memoryStore := store.NewMemoryStore()
	hub := overlay.NewHub(overlay.Options{
		Logger:      logger,
		CheckOrigin: overlayOriginCheck(cfg.CORSOrigins),
	})
	scheduler := animation.NewScheduler(animation.Options{
		Clock:            d.clock,
		StartupGrace:     cfg.Animation.StartupGrace,
		ExplanationDelay: cfg.Animation.ExplanationDelay,
		Logger:           logger,
		Metrics:          recorder,
	})
	svc := gamecast.NewService(gamecast.Options{
		Store:     memoryStore,
		Analyzer:  plays.NewAnalyzer(teams.DefaultTable()),
		Scheduler: scheduler,
		Cards:     hub,
		Provider:  provider,
		Logger:    logger,
		Metrics:   recorder,
	})

	client := realtime.New(realtime.Config{
		URL:                  cfg.Realtime.URL,
		MaxReconnectAttempts: cfg.Realtime.MaxReconnectAttempts,
		ReconnectDelay:       cfg.Realtime.ReconnectDelay,
		ReconnectMaxDelay:    cfg.Realtime.ReconnectMaxDelay,
		AckTimeout:           cfg.Realtime.AckTimeout,
		FallbackInterval:     cfg.Realtime.FallbackInterval,
	}, realtime.Options{
		Dialer:  d.dialer,
		Logger:  logger,
		Metrics: recorder,
	})
	client.OnAnyUpdate(svc.HandleUpdate)
	client.OnFallback(svc.HandleFallback)

	s := &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         memoryStore,
		scheduler:     scheduler,
		hub:           hub,
		service:       svc,
		transport:     client,
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
		closeProvider: closeProvider,
	}
	s.httpServer = s.buildHTTPServer()
	return s
}

func (s *Server) buildHTTPServer() httpServer {
	handler := handlers.NewHandler(handlers.Deps{
		Games:     s.service,
		Cards:     s.scheduler,
		Teams:     appteams.NewService(teams.DefaultTable()),
		Transport: s.transport,
		Logger:    s.logger,
	})
	router := httpserver.NewRouter(handler, httpserver.RouterOptions{
		Admin:       handlers.NewAdminHandler(s.scheduler, s.cfg.AdminToken, s.logger),
		Overlay:     s.hub,
		CORSOrigins: s.cfg.CORSOrigins,
		Logger:      s.logger,
		Metrics:     s.metrics,
	})
	return newHTTPServer(s.cfg.Port, router)
}

// Run starts the servers and the push transport, then waits for context cancellation to shut
// down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.startTransport(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// startTransport records the configured subscriptions and connects in the background. The
// subscriptions replay on every (re)connect; an exhausted connect leaves the client polling.
func (s *Server) startTransport(ctx context.Context) {
	if err := s.transport.Subscribe(ctx, s.cfg.Realtime.Sports); err != nil {
		logging.Warn(s.logger, "initial subscribe failed", "error", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.transport.Connect(ctx)
		switch {
		case err == nil:
			logging.Info(s.logger, "realtime transport connected",
				slog.String("url", s.cfg.Realtime.URL),
				slog.Any("sports", s.transport.Subscriptions()),
			)
		case errors.Is(err, realtime.ErrReconnectExhausted):
			logging.Warn(s.logger, "realtime transport unavailable, polling provider", "error", err)
		case ctx.Err() != nil, errors.Is(err, realtime.ErrClosed):
		default:
			logging.Warn(s.logger, "realtime connect failed", "error", err)
		}
	}()
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop new updates first so nothing is enqueued behind the scheduler's back.
	s.transport.Disconnect()
	s.wg.Wait()

	if s.scheduler != nil {
		s.scheduler.Close()
	}
	if s.hub != nil {
		s.hub.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if s.closeProvider != nil {
		if err := s.closeProvider(); err != nil {
			logging.Warn(s.logger, "provider close failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{srv: &http.Server{
			Addr:              ":" + recCfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		}}
	}

	return rec, metricsSrv, shutdown
}

// overlayOriginCheck mirrors the CORS allow-list for WebSocket upgrades. A wildcard or an
// empty list allows every origin; requests without an Origin header are always allowed.
func overlayOriginCheck(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return nil
		}
		if o != "" {
			allowed[strings.ToLower(o)] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
