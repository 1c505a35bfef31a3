package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/stateofclarity/refinery/internal/core/domain"
	"github.com/stateofclarity/refinery/internal/infra/storage"
	"github.com/stateofclarity/refinery/internal/refine/engine"
)

// Claimer polls for draft briefs and runs the refinement loop on each one
// it claims. Claims go through the repository so several workers can share
// a queue without double-processing.
type Claimer struct {
	briefs   storage.BriefRepository
	engine   *engine.Engine
	interval time.Duration
	log      *slog.Logger
}

// NewClaimer creates a Claimer polling at the given interval.
func NewClaimer(briefs storage.BriefRepository, eng *engine.Engine, interval time.Duration, log *slog.Logger) *Claimer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Claimer{
		briefs:   briefs,
		engine:   eng,
		interval: interval,
		log:      log,
	}
}

// Start runs the claim loop until ctx is cancelled. After each completed
// run it immediately tries to claim again, so a backlog drains at full
// speed and the poll interval only governs the idle case.
func (c *Claimer) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.drain(ctx)
		}
	}
}

func (c *Claimer) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		brief, err := c.briefs.ClaimNext(ctx)
		if err != nil {
			c.log.Error("[Claimer] failed to claim brief", "error", err)
			return
		}
		if brief == nil {
			return
		}
		if !c.process(ctx, brief) {
			return
		}
	}
}

// process runs one refinement. It reports false when the drain loop should
// stop and wait for the next tick, which happens after a requeue: claiming
// the same brief again immediately would just spin on the held lock.
func (c *Claimer) process(ctx context.Context, brief *domain.Brief) bool {
	c.log.Info("[Claimer] claimed brief", "brief_id", brief.ID, "topic", brief.Topic)

	result, err := c.engine.Refine(ctx, brief)
	if err != nil {
		if errors.Is(err, engine.ErrAlreadyRefining) {
			c.log.Warn("[Claimer] brief already being refined elsewhere", "brief_id", brief.ID)
			// Put the claim back; the brief stays claimable once the lock clears.
			brief.Status = domain.BriefStatusDraft
			if saveErr := c.briefs.Save(ctx, brief); saveErr != nil {
				c.log.Error("[Claimer] failed to requeue brief", "brief_id", brief.ID, "error", saveErr)
			}
			return false
		}
		c.log.Error("[Claimer] refinement run failed", "brief_id", brief.ID, "error", err)
		return true
	}

	c.log.Info("[Claimer] refinement finished",
		"brief_id", brief.ID,
		"tier", result.Tier,
		"score", result.FinalScore,
		"publishable", result.Publishable)
	return true
}
