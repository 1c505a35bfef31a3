// Package engine drives the multi-attempt refinement loop: deploy fixers,
// reconcile their edits, re-score, and repeat until the brief clears the
// target score or attempts run out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stateofclarity/refinery/internal/core/domain"
	"github.com/stateofclarity/refinery/internal/infra/agent"
	"github.com/stateofclarity/refinery/internal/infra/storage"
	"github.com/stateofclarity/refinery/internal/refine/metrics"
	"github.com/stateofclarity/refinery/internal/refine/quality"
	"github.com/stateofclarity/refinery/internal/refine/retry"
	"github.com/stateofclarity/refinery/internal/refine/telemetry"
)

// ErrAlreadyRefining is returned when another worker holds the run lock.
var ErrAlreadyRefining = errors.New("brief is already being refined")

// Locker serializes refinement runs per brief.
type Locker interface {
	AcquireRunLock(ctx context.Context, briefID string, ttl time.Duration) (bool, error)
	ReleaseRunLock(ctx context.Context, briefID string) error
}

// ResultCache stores the latest gate result per brief.
type ResultCache interface {
	CacheGateResult(ctx context.Context, briefID string, result quality.GateResult, ttl time.Duration) error
}

// Config tunes the refinement loop.
type Config struct {
	MaxAttempts         int
	TargetScore         float64
	MaxFixersPerAttempt int
	RefundCredits       float64
	LockTTL             time.Duration
	ResultTTL           time.Duration
	Retry               retry.Config
}

// DefaultConfig provides sensible loop defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:         3,
		TargetScore:         quality.HighThreshold,
		MaxFixersPerAttempt: 3,
		RefundCredits:       1.0,
		LockTTL:             10 * time.Minute,
		ResultTTL:           24 * time.Hour,
	}
}

// Engine orchestrates one refinement run per brief.
type Engine struct {
	cfg       Config
	scorer    agent.Scorer
	fixers    map[string]agent.Fixer // keyed by dimension
	briefs    storage.BriefRepository
	credits   storage.CreditRepository
	tel       *telemetry.Logger
	locks     Locker      // optional
	cache     ResultCache // optional
	log       *slog.Logger
	retryOpts []retry.Option
}

// New creates an Engine. locks and cache may be nil when Redis is not
// configured; runs then proceed without cross-worker serialization.
func New(
	cfg Config,
	scorer agent.Scorer,
	fixers []agent.Fixer,
	briefs storage.BriefRepository,
	credits storage.CreditRepository,
	tel *telemetry.Logger,
	locks Locker,
	cache ResultCache,
	log *slog.Logger,
	retryOpts ...retry.Option,
) *Engine {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.TargetScore <= 0 {
		cfg.TargetScore = DefaultConfig().TargetScore
	}
	if cfg.MaxFixersPerAttempt < 1 {
		cfg.MaxFixersPerAttempt = DefaultConfig().MaxFixersPerAttempt
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultConfig().LockTTL
	}
	if log == nil {
		log = slog.Default()
	}

	byDimension := make(map[string]agent.Fixer, len(fixers))
	for _, f := range fixers {
		byDimension[f.Dimension()] = f
	}

	return &Engine{
		cfg:       cfg,
		scorer:    scorer,
		fixers:    byDimension,
		briefs:    briefs,
		credits:   credits,
		tel:       tel,
		locks:     locks,
		cache:     cache,
		log:       log,
		retryOpts: retryOpts,
	}
}

// Refine runs the full refinement loop for one brief and returns the quality
// gate decision. The brief's terminal state, refunds and telemetry are all
// handled here; the caller only schedules.
func (e *Engine) Refine(ctx context.Context, brief *domain.Brief) (*quality.GateResult, error) {
	if e.locks != nil {
		ok, err := e.locks.AcquireRunLock(ctx, brief.ID, e.cfg.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !ok {
			return nil, ErrAlreadyRefining
		}
		defer func() {
			if err := e.locks.ReleaseRunLock(context.WithoutCancel(ctx), brief.ID); err != nil {
				e.log.Warn("failed to release run lock", "brief", brief.ID, "error", err)
			}
		}()
	}

	start := time.Now()
	var attempts []domain.RefinementAttempt

	scores, err := e.score(ctx, brief)
	if err != nil {
		return nil, e.fail(ctx, brief, attempts, err)
	}

	for attemptNo := 1; attemptNo <= e.cfg.MaxAttempts && scores.Overall < e.cfg.TargetScore; attemptNo++ {
		deployed := e.selectFixers(scores)
		if len(deployed) == 0 {
			e.log.Warn("no fixers available for weak dimensions", "brief", brief.ID)
			break
		}

		attempt, after, err := e.runAttempt(ctx, brief, attemptNo, scores, deployed)
		if err != nil {
			return nil, e.fail(ctx, brief, attempts, err)
		}
		attempts = append(attempts, attempt)
		scores = after

		metrics.RefinementAttemptsTotal.WithLabelValues("completed").Inc()
		e.tel.LogRefinementAttempt(ctx, brief.ID, attempt)
		e.log.Info("refinement attempt finished",
			"brief", brief.ID, "attempt", attemptNo,
			"score_before", attempt.ScoreBefore, "score_after", attempt.ScoreAfter)
	}

	gate := quality.Evaluate(scores.Overall, len(attempts))
	metrics.FinalScore.Observe(gate.FinalScore)
	metrics.RefinementDuration.Observe(time.Since(start).Seconds())

	status := domain.BriefStatusPublished
	if !gate.Publishable {
		status = domain.BriefStatusFailed
	}
	if err := e.briefs.Finish(ctx, brief.ID, status, gate.FinalScore, gate.Attempts); err != nil {
		return nil, fmt.Errorf("failed to finish brief: %w", err)
	}

	if gate.RefundRequired {
		e.refund(ctx, brief)
	}
	if e.cache != nil {
		if err := e.cache.CacheGateResult(ctx, brief.ID, gate, e.cfg.ResultTTL); err != nil {
			e.log.Warn("failed to cache gate result", "brief", brief.ID, "error", err)
		}
	}
	e.tel.LogRefinementSummary(ctx, brief.ID, attempts)
	e.log.Info("refinement run finished",
		"brief", brief.ID, "tier", gate.Tier, "score", gate.FinalScore,
		"attempts", gate.Attempts, "publishable", gate.Publishable)

	return &gate, nil
}

// runAttempt executes one pass: fan out fixers, reconcile, apply, re-score.
func (e *Engine) runAttempt(
	ctx context.Context,
	brief *domain.Brief,
	attemptNo int,
	before domain.DimensionScores,
	deployed []agent.Fixer,
) (domain.RefinementAttempt, domain.DimensionScores, error) {
	attemptStart := time.Now()

	type fixerResult struct {
		edits []domain.Edit
		err   error
	}
	results := make([]fixerResult, len(deployed))
	done := make(chan int, len(deployed))

	for i, fixer := range deployed {
		go func(i int, fixer agent.Fixer) {
			callStart := time.Now()
			edits, err := retry.DoSmart(ctx, e.retryConfig(fixer.Name()), func(ctx context.Context) ([]domain.Edit, error) {
				return fixer.Fix(ctx, brief)
			}, e.retryOpts...)
			results[i] = fixerResult{edits: edits, err: err}

			status := "completed"
			if err != nil {
				status = "failed"
			}
			e.tel.LogFixer(ctx, brief.ID, telemetry.Execution{
				AgentName: fixer.Name(),
				Status:    status,
				Detail:    map[string]any{"dimension": fixer.Dimension(), "edits": len(edits)},
				Duration:  time.Since(callStart),
			})
			done <- i
		}(i, fixer)
	}
	for range deployed {
		<-done
	}

	// Flatten in deployment order so reconciliation is deterministic.
	var proposed []domain.Edit
	names := make([]string, 0, len(deployed))
	failures := 0
	for i, fixer := range deployed {
		names = append(names, fixer.Name())
		if results[i].err != nil {
			failures++
			e.log.Warn("fixer failed", "brief", brief.ID, "fixer", fixer.Name(), "error", results[i].err)
			continue
		}
		proposed = append(proposed, results[i].edits...)
	}
	if failures == len(deployed) {
		return domain.RefinementAttempt{}, before, fmt.Errorf("all %d fixers failed: %w", failures, results[0].err)
	}

	made, skipped := reconcile(proposed)
	brief.Content = applyEdits(brief.Content, made)
	e.tel.LogReconciliation(ctx, brief.ID, telemetry.Execution{
		AgentName: "reconciler",
		Status:    "completed",
		Detail:    map[string]any{"applied": len(made), "skipped": len(skipped)},
	})

	after, err := e.score(ctx, brief)
	if err != nil {
		return domain.RefinementAttempt{}, before, err
	}

	delta := make(map[string]float64, len(after.Dimensions))
	for dim, score := range after.Dimensions {
		delta[dim] = score - before.Dimensions[dim]
	}

	return domain.RefinementAttempt{
		AttemptNumber:  attemptNo,
		FixersDeployed: names,
		EditsMade:      made,
		EditsSkipped:   skipped,
		ScoreBefore:    before.Overall,
		ScoreAfter:     after.Overall,
		DimensionDelta: delta,
		ProcessingTime: time.Since(attemptStart),
	}, after, nil
}

func (e *Engine) score(ctx context.Context, brief *domain.Brief) (domain.DimensionScores, error) {
	callStart := time.Now()
	scores, err := retry.DoSmart(ctx, e.retryConfig(e.scorer.Name()), func(ctx context.Context) (domain.DimensionScores, error) {
		return e.scorer.Score(ctx, brief)
	}, e.retryOpts...)

	status := "completed"
	if err != nil {
		status = "failed"
	}
	e.tel.LogExecution(ctx, brief.ID, telemetry.Execution{
		AgentName: e.scorer.Name(),
		Status:    status,
		Detail:    map[string]any{"overall": scores.Overall},
		Duration:  time.Since(callStart),
	})
	return scores, err
}

// selectFixers picks fixers for the weakest dimensions that have one wired.
func (e *Engine) selectFixers(scores domain.DimensionScores) []agent.Fixer {
	var deployed []agent.Fixer
	for _, dim := range scores.Weakest(len(scores.Dimensions)) {
		if fixer, ok := e.fixers[dim]; ok {
			deployed = append(deployed, fixer)
			if len(deployed) == e.cfg.MaxFixersPerAttempt {
				break
			}
		}
	}
	return deployed
}

// fail marks the brief failed, refunds, and logs the summary before
// surfacing the error to the scheduler.
func (e *Engine) fail(ctx context.Context, brief *domain.Brief, attempts []domain.RefinementAttempt, cause error) error {
	metrics.RefinementAttemptsTotal.WithLabelValues("failed").Inc()
	if err := e.briefs.Finish(ctx, brief.ID, domain.BriefStatusFailed, brief.Score, len(attempts)); err != nil {
		e.log.Error("failed to mark brief failed", "brief", brief.ID, "error", err)
	}
	e.refund(ctx, brief)
	e.tel.LogRefinementSummary(ctx, brief.ID, attempts)
	return fmt.Errorf("refinement of brief %s failed: %w", brief.ID, cause)
}

func (e *Engine) refund(ctx context.Context, brief *domain.Brief) {
	if e.credits == nil || e.cfg.RefundCredits <= 0 {
		return
	}
	err := e.credits.Refund(ctx, &domain.CreditTransaction{
		BriefID: brief.ID,
		Amount:  e.cfg.RefundCredits,
		Reason:  domain.RefundReasonQualityFailed,
	})
	if err != nil {
		e.log.Error("failed to record refund", "brief", brief.ID, "error", err)
		return
	}
	metrics.RefundsTotal.Inc()
}

func (e *Engine) retryConfig(agentName string) retry.Config {
	cfg := e.cfg.Retry
	cfg.AgentName = agentName
	return cfg
}
