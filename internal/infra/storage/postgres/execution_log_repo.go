package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/stateofclarity/refinery/internal/core/domain"
)

// ExecutionLogRepo implements storage.ExecutionLogRepository using PostgreSQL.
type ExecutionLogRepo struct {
	db *DB
}

// NewExecutionLogRepo creates a new PostgreSQL execution log repository.
func NewExecutionLogRepo(db *DB) *ExecutionLogRepo {
	return &ExecutionLogRepo{db: db}
}

// Insert writes one execution log row and returns its id.
func (r *ExecutionLogRepo) Insert(ctx context.Context, entry *domain.ExecutionLog) (string, error) {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}

	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		return "", fmt.Errorf("failed to marshal log detail: %w", err)
	}

	query := `
		INSERT INTO execution_logs (id, brief_id, agent_type, agent_name, status, detail, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id
	`

	var inserted string
	err = r.db.GetContext(
		ctx,
		&inserted,
		query,
		id,
		entry.BriefID,
		string(entry.AgentType),
		entry.AgentName,
		entry.Status,
		detail,
		entry.DurationMs,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert execution log: %w", err)
	}
	return inserted, nil
}
