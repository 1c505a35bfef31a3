package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stateofclarity/refinery/internal/control"
	"github.com/stateofclarity/refinery/internal/core/config"
)

func TestGracefulShutdown(t *testing.T) {
	// Memory-mode config: no database, no redis, agents never called
	// because nothing is queued.
	cfg := &config.AppConfig{
		Server: config.ServerConfig{Port: 0},
		Refinement: config.RefinementConfig{
			PollInterval: config.Duration(100 * time.Millisecond),
		},
		Scorer: config.AgentConfig{Name: "scorer", URL: "http://localhost:1"},
		Fixers: []config.AgentConfig{
			{Name: "accuracy-fixer", URL: "http://localhost:1", Dimension: "accuracy"},
		},
	}

	app, err := control.NewRefinery(cfg)
	if err != nil {
		t.Fatalf("Failed to create refinery: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let the worker loop tick a few times.
	time.Sleep(500 * time.Millisecond)

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
