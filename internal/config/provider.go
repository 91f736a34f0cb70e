package config

// ProviderConfig selects the out-of-band snapshot source used during fallback polling.
type ProviderConfig struct {
	Name          string // fixture, scoreboard or redis
	BaseURL       string
	APIKey        string
	RatePerMinute int
}

// RedisConfig points at the cache the upstream ingest writes live snapshots into.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

func loadProvider() ProviderConfig {
	return ProviderConfig{
		Name:          envOrDefault(envProvider, defaultProvider),
		BaseURL:       envOrDefault(envProviderBaseURL, defaultProviderBaseURL),
		APIKey:        envOrDefault(envProviderAPIKey, ""),
		RatePerMinute: intEnvOrDefault(envProviderRate, defaultProviderRate),
	}
}

func loadRedis() RedisConfig {
	return RedisConfig{
		Addr:      envOrDefault(envRedisAddr, defaultRedisAddr),
		Password:  envOrDefault(envRedisPassword, ""),
		DB:        nonNegativeIntEnvOrDefault(envRedisDB, 0),
		KeyPrefix: envOrDefault(envRedisPrefix, defaultRedisPrefix),
	}
}
