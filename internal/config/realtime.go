package config

import "time"

// RealtimeConfig controls the push connection to the live update source.
type RealtimeConfig struct {
	URL                  string
	Sports               []string
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	ReconnectMaxDelay    time.Duration
	AckTimeout           time.Duration
	FallbackInterval     time.Duration
}

func loadRealtime() RealtimeConfig {
	return RealtimeConfig{
		URL:                  envOrDefault(envRealtimeURL, defaultRealtimeURL),
		Sports:               listEnvOrDefault(envRealtimeSports, defaultSports),
		MaxReconnectAttempts: intEnvOrDefault(envMaxReconnects, defaultMaxReconnects),
		ReconnectDelay:       durationEnvOrDefault(envReconnectDelay, defaultReconnectDelay),
		ReconnectMaxDelay:    durationEnvOrDefault(envReconnectMaxDelay, defaultReconnectMax),
		AckTimeout:           durationEnvOrDefault(envAckTimeout, defaultAckTimeout),
		FallbackInterval:     durationEnvOrDefault(envFallbackInterval, defaultFallbackInterval),
	}
}
