package config

import "time"

const (
	envPort        = "PORT"
	envCORSOrigins = "CORS_ORIGINS"
	envAdminToken  = "ADMIN_TOKEN"

	envRealtimeURL       = "REALTIME_URL"
	envRealtimeSports    = "REALTIME_SPORTS"
	envMaxReconnects     = "REALTIME_MAX_RECONNECT_ATTEMPTS"
	envReconnectDelay    = "REALTIME_RECONNECT_DELAY"
	envReconnectMaxDelay = "REALTIME_RECONNECT_MAX_DELAY"
	envAckTimeout        = "REALTIME_ACK_TIMEOUT"
	envFallbackInterval  = "REALTIME_FALLBACK_INTERVAL"

	envProvider        = "PROVIDER"
	envProviderBaseURL = "PROVIDER_BASE_URL"
	envProviderAPIKey  = "PROVIDER_API_KEY"
	envProviderRate    = "PROVIDER_RATE_PER_MINUTE"

	envRedisAddr     = "REDIS_ADDR"
	envRedisPassword = "REDIS_PASSWORD"
	envRedisDB       = "REDIS_DB"
	envRedisPrefix   = "REDIS_KEY_PREFIX"

	envStartupGrace     = "ANIMATION_STARTUP_GRACE"
	envExplanationDelay = "ANIMATION_EXPLANATION_DELAY"

	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort            = "4000"
	defaultRealtimeURL     = "ws://localhost:3001/realtime"
	defaultProvider        = "fixture"
	defaultProviderBaseURL = "http://localhost:3001/api"
	defaultMetricsPort     = "9090"
	defaultServiceName     = "gamecast-service"
	defaultRedisAddr       = "localhost:6379"
	defaultRedisPrefix     = "games:live"

	defaultMaxReconnects = 5
	// Out-of-band refetches share the upstream quota with the push source.
	defaultProviderRate = 30

	defaultReconnectDelay   = 1 * time.Second
	defaultReconnectMax     = 30 * time.Second
	defaultAckTimeout       = 10 * time.Second
	defaultFallbackInterval = 60 * time.Second
	// Catch-up events replayed right after a card first renders are not animated.
	defaultStartupGrace     = 3 * time.Second
	defaultExplanationDelay = 8 * time.Second
)

var defaultSports = []string{"nfl"}
