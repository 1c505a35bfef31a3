package storage

import (
	"context"
	"errors"

	"github.com/stateofclarity/refinery/internal/core/domain"
)

var (
	// ErrBriefNotFound is returned when a brief doesn't exist
	ErrBriefNotFound = errors.New("brief not found")
)

// BriefRepository handles brief storage operations
type BriefRepository interface {
	// Save inserts or updates a brief
	Save(ctx context.Context, brief *domain.Brief) error

	// GetByID retrieves a brief by id
	GetByID(ctx context.Context, id string) (*domain.Brief, error)

	// ClaimNext atomically claims the oldest draft brief for refinement,
	// marking it refining. Returns nil when nothing is pending.
	ClaimNext(ctx context.Context) (*domain.Brief, error)

	// Finish records the terminal state of a refinement run
	Finish(ctx context.Context, id string, status domain.BriefStatus, score float64, attempts int) error
}

// ExecutionLogRepository is the narrow insert contract telemetry writes
// through. Implementations return the generated row id.
type ExecutionLogRepository interface {
	Insert(ctx context.Context, entry *domain.ExecutionLog) (string, error)
}

// CreditRepository handles the credit refund ledger
type CreditRepository interface {
	// Refund records a credit refund for a brief
	Refund(ctx context.Context, tx *domain.CreditTransaction) error

	// TotalRefunded returns the sum refunded against a brief
	TotalRefunded(ctx context.Context, briefID string) (float64, error)
}
