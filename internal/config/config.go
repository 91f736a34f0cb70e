package config

import "github.com/joho/godotenv"

// Config holds runtime configuration for the server.
type Config struct {
	Port        string
	Realtime    RealtimeConfig
	Provider    ProviderConfig
	Redis       RedisConfig
	Animation   AnimationConfig
	Metrics     MetricsConfig
	CORSOrigins []string
	// AdminToken guards operator endpoints; empty leaves them unmounted.
	AdminToken string
}

// MetricsConfig controls the Prometheus listener and the optional OTLP push exporter.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first; variables already set win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        envOrDefault(envPort, defaultPort),
		Realtime:    loadRealtime(),
		Provider:    loadProvider(),
		Redis:       loadRedis(),
		Animation:   loadAnimation(),
		Metrics:     loadMetrics(),
		CORSOrigins: listEnvOrDefault(envCORSOrigins, []string{"*"}),
		AdminToken:  envOrDefault(envAdminToken, ""),
	}
}

func loadMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, true),
		Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
		OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
		ServiceName:  envOrDefault(envOtelService, defaultServiceName),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
	}
}
