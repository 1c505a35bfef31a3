package domain

import "time"

// AgentType labels the kind of agent an execution log row belongs to.
type AgentType string

const (
	AgentTypeExecution      AgentType = "execution"
	AgentTypeFixer          AgentType = "fixer"
	AgentTypeOrchestrator   AgentType = "orchestrator"
	AgentTypeReconciliation AgentType = "reconciliation"
	AgentTypeAttempt        AgentType = "refinement_attempt"
	AgentTypeSummary        AgentType = "refinement_summary"
)

// ExecutionLog is one flat telemetry record for an agent invocation.
// Detail carries the agent-specific payload and is stored as JSONB.
type ExecutionLog struct {
	ID         string         `json:"id"          db:"id"`
	BriefID    string         `json:"brief_id"    db:"brief_id"`
	AgentType  AgentType      `json:"agent_type"  db:"agent_type"`
	AgentName  string         `json:"agent_name"  db:"agent_name"`
	Status     string         `json:"status"      db:"status"`
	Detail     map[string]any `json:"detail"      db:"detail"`
	DurationMs int64          `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time      `json:"created_at"  db:"created_at"`
}
