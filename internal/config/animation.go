package config

import "time"

// AnimationConfig tunes the per-card effect scheduler.
type AnimationConfig struct {
	StartupGrace     time.Duration
	ExplanationDelay time.Duration
}

func loadAnimation() AnimationConfig {
	return AnimationConfig{
		StartupGrace:     durationEnvOrDefault(envStartupGrace, defaultStartupGrace),
		ExplanationDelay: durationEnvOrDefault(envExplanationDelay, defaultExplanationDelay),
	}
}
