// Package telemetry records structured execution logs for agent invocations.
// Logging is best-effort: persistence failures are swallowed so they can
// never abort the refinement pipeline they instrument.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/stateofclarity/refinery/internal/core/domain"
	"github.com/stateofclarity/refinery/internal/infra/storage"
	"github.com/stateofclarity/refinery/internal/refine/cost"
	"github.com/stateofclarity/refinery/internal/refine/metrics"
)

// Logger writes execution log rows through a narrow repository contract.
type Logger struct {
	repo    storage.ExecutionLogRepository
	log     *slog.Logger
	pricing cost.Pricing
}

// NewLogger creates a Logger. A nil slog falls back to the process default.
func NewLogger(repo storage.ExecutionLogRepository, log *slog.Logger, pricing cost.Pricing) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{repo: repo, log: log, pricing: pricing}
}

// Execution is the generic payload for a single agent invocation.
type Execution struct {
	AgentName string
	Status    string
	Detail    map[string]any
	Duration  time.Duration
}

// LogExecution records a generic agent invocation. Returns the row id, or ""
// when the insert failed.
func (l *Logger) LogExecution(ctx context.Context, briefID string, exec Execution) string {
	return l.insert(ctx, briefID, domain.AgentTypeExecution, exec)
}

// LogFixer records one fixer invocation.
func (l *Logger) LogFixer(ctx context.Context, briefID string, exec Execution) string {
	return l.insert(ctx, briefID, domain.AgentTypeFixer, exec)
}

// LogOrchestrator records an orchestrator step.
func (l *Logger) LogOrchestrator(ctx context.Context, briefID string, exec Execution) string {
	return l.insert(ctx, briefID, domain.AgentTypeOrchestrator, exec)
}

// LogReconciliation records an edit reconciliation pass.
func (l *Logger) LogReconciliation(ctx context.Context, briefID string, exec Execution) string {
	return l.insert(ctx, briefID, domain.AgentTypeReconciliation, exec)
}

// LogRefinementAttempt records one refinement attempt with derived edit
// counts and score deltas.
func (l *Logger) LogRefinementAttempt(ctx context.Context, briefID string, attempt domain.RefinementAttempt) string {
	made := len(attempt.EditsMade)
	skipped := len(attempt.EditsSkipped)

	detail := map[string]any{
		"attempt_number":  attempt.AttemptNumber,
		"fixers_deployed": attempt.FixersDeployed,
		"edits_count": map[string]any{
			"suggested": made + skipped,
			"applied":   made,
			"skipped":   skipped,
		},
		"scores": map[string]any{
			"before": attempt.ScoreBefore,
			"after":  attempt.ScoreAfter,
			"change": attempt.ScoreAfter - attempt.ScoreBefore,
		},
		"dimension_delta": attempt.DimensionDelta,
	}

	return l.insert(ctx, briefID, domain.AgentTypeAttempt, Execution{
		AgentName: "refinement",
		Status:    "completed",
		Detail:    detail,
		Duration:  attempt.ProcessingTime,
	})
}

// LogRefinementSummary aggregates edit counts and score progression across an
// ordered sequence of attempts and records one summary row. An empty sequence
// yields all-zero aggregates and an empty progression.
func (l *Logger) LogRefinementSummary(ctx context.Context, briefID string, attempts []domain.RefinementAttempt) string {
	var applied, skipped int
	var totalDuration time.Duration
	progression := make([]float64, 0, len(attempts)+1)
	fixers := map[string]struct{}{}

	for i, attempt := range attempts {
		applied += len(attempt.EditsMade)
		skipped += len(attempt.EditsSkipped)
		totalDuration += attempt.ProcessingTime
		for _, f := range attempt.FixersDeployed {
			fixers[f] = struct{}{}
		}
		if i == 0 {
			progression = append(progression, attempt.ScoreBefore)
		}
		progression = append(progression, attempt.ScoreAfter)
	}

	detail := map[string]any{
		"attempts": len(attempts),
		"edits_count": map[string]any{
			"suggested": applied + skipped,
			"applied":   applied,
			"skipped":   skipped,
		},
		"score_progression": progression,
		"distinct_fixers":   len(fixers),
		"estimated_cost":    l.pricing.Estimate(len(fixers), len(attempts)),
	}

	return l.insert(ctx, briefID, domain.AgentTypeSummary, Execution{
		AgentName: "refinement",
		Status:    "completed",
		Detail:    detail,
		Duration:  totalDuration,
	})
}

func (l *Logger) insert(ctx context.Context, briefID string, agentType domain.AgentType, exec Execution) (id string) {
	defer func() {
		// The repository is an external collaborator; a panic from it must
		// not take the pipeline down either.
		if r := recover(); r != nil {
			l.log.Error("[ExecutionLogger] insert panicked", "agent_type", agentType, "panic", r)
			metrics.TelemetryInsertFailures.Inc()
			id = ""
		}
	}()

	entry := &domain.ExecutionLog{
		BriefID:    briefID,
		AgentType:  agentType,
		AgentName:  exec.AgentName,
		Status:     exec.Status,
		Detail:     exec.Detail,
		DurationMs: exec.Duration.Milliseconds(),
	}

	inserted, err := l.repo.Insert(ctx, entry)
	if err != nil {
		l.log.Error("[ExecutionLogger] failed to insert execution log",
			"agent_type", agentType, "agent", exec.AgentName, "brief", briefID, "error", err)
		metrics.TelemetryInsertFailures.Inc()
		return ""
	}
	return inserted
}
