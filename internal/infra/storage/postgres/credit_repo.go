package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stateofclarity/refinery/internal/core/domain"
)

// CreditRepo implements storage.CreditRepository using PostgreSQL.
type CreditRepo struct {
	db *DB
}

// NewCreditRepo creates a new PostgreSQL credit repository.
func NewCreditRepo(db *DB) *CreditRepo {
	return &CreditRepo{db: db}
}

// Refund records a credit refund for a brief.
func (r *CreditRepo) Refund(ctx context.Context, tx *domain.CreditTransaction) error {
	id := tx.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO credit_transactions (id, brief_id, user_id, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.ExecContext(ctx, query, id, tx.BriefID, tx.UserID, tx.Amount, tx.Reason)
	if err != nil {
		return fmt.Errorf("failed to record refund: %w", err)
	}
	return nil
}

// TotalRefunded returns the sum refunded against a brief.
func (r *CreditRepo) TotalRefunded(ctx context.Context, briefID string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_transactions
		WHERE brief_id = $1
	`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, briefID); err != nil {
		return 0, fmt.Errorf("failed to sum refunds: %w", err)
	}
	return total, nil
}
