package config

import (
	"github.com/stateofclarity/refinery/internal/infra/redis"
	"github.com/stateofclarity/refinery/internal/infra/storage/postgres"
	"github.com/stateofclarity/refinery/internal/refine/cost"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Database   postgres.Config  `yaml:"database"`
	Redis      redis.Config     `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Refinement RefinementConfig `yaml:"refinement"`
	Retry      RetryConfig      `yaml:"retry"`
	Pricing    cost.Pricing     `yaml:"pricing"`
	Scorer     AgentConfig      `yaml:"scorer"`
	Fixers     []AgentConfig    `yaml:"fixers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RefinementConfig holds refinement loop settings.
type RefinementConfig struct {
	MaxAttempts         int      `yaml:"max_attempts"`
	TargetScore         float64  `yaml:"target_score"`
	MaxFixersPerAttempt int      `yaml:"max_fixers_per_attempt"`
	RefundCredits       float64  `yaml:"refund_credits"`
	PollInterval        Duration `yaml:"poll_interval"`
	LockTTL             Duration `yaml:"lock_ttl"`
	ResultTTL           Duration `yaml:"result_ttl"`
}

// RetryConfig holds the default retry policy for agent calls.
type RetryConfig struct {
	MaxRetries        int      `yaml:"max_retries"`
	InitialDelay      Duration `yaml:"initial_delay"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier"`
	MaxDelay          Duration `yaml:"max_delay"`
}

// AgentConfig holds settings for an external agent endpoint.
type AgentConfig struct {
	Name      string   `yaml:"name"`
	URL       string   `yaml:"url"`
	Dimension string   `yaml:"dimension"` // empty for the scorer
	Timeout   Duration `yaml:"timeout"`
}
