package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/gamecast-service/internal/config"
	"github.com/preston-bernstein/gamecast-service/internal/logging"
	"github.com/preston-bernstein/gamecast-service/internal/server"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: "gamecast-service",
		Version: appVersion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("gamecast starting", startupAttrs(cfg)...)
	server.New(cfg, logger).Run(ctx, stop)
}

func startupAttrs(cfg config.Config) []any {
	return []any{
		slog.String("port", cfg.Port),
		slog.String(logging.FieldProvider, cfg.Provider.Name),
		slog.Any("sports", cfg.Realtime.Sports),
		slog.Bool("metrics", cfg.Metrics.Enabled),
		slog.Bool("admin", cfg.AdminToken != ""),
	}
}
