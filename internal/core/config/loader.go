package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/stateofclarity/refinery/internal/refine/cost"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Refinement.MaxAttempts == 0 {
		cfg.Refinement.MaxAttempts = 3
	}
	if cfg.Refinement.TargetScore == 0 {
		cfg.Refinement.TargetScore = 8.0
	}
	if cfg.Refinement.MaxFixersPerAttempt == 0 {
		cfg.Refinement.MaxFixersPerAttempt = 3
	}
	if cfg.Refinement.PollInterval == 0 {
		cfg.Refinement.PollInterval = Duration(10 * time.Second)
	}
	if cfg.Refinement.LockTTL == 0 {
		cfg.Refinement.LockTTL = Duration(10 * time.Minute)
	}
	if cfg.Refinement.ResultTTL == 0 {
		cfg.Refinement.ResultTTL = Duration(24 * time.Hour)
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 3
	}
	if cfg.Retry.InitialDelay == 0 {
		cfg.Retry.InitialDelay = Duration(1 * time.Second)
	}
	if cfg.Retry.BackoffMultiplier == 0 {
		cfg.Retry.BackoffMultiplier = 2.0
	}
	if cfg.Pricing.PerFixer == 0 && cfg.Pricing.ReconciliationAndScore == 0 {
		cfg.Pricing = cost.DefaultPricing
	}
	for i := range cfg.Fixers {
		if cfg.Fixers[i].Timeout == 0 {
			cfg.Fixers[i].Timeout = Duration(60 * time.Second)
		}
	}
	if cfg.Scorer.Timeout == 0 {
		cfg.Scorer.Timeout = Duration(60 * time.Second)
	}

	return &cfg, nil
}
