package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stateofclarity/refinery/internal/core/domain"
	"github.com/stateofclarity/refinery/internal/infra/storage"
)

// BriefRepo implements storage.BriefRepository using PostgreSQL.
type BriefRepo struct {
	db *DB
}

// NewBriefRepo creates a new PostgreSQL brief repository.
func NewBriefRepo(db *DB) *BriefRepo {
	return &BriefRepo{db: db}
}

// Save inserts or updates a brief.
func (r *BriefRepo) Save(ctx context.Context, brief *domain.Brief) error {
	query := `
		INSERT INTO briefs (id, topic, content, status, score, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			status = EXCLUDED.status,
			score = EXCLUDED.score,
			attempts = EXCLUDED.attempts,
			updated_at = NOW()
	`
	status := string(brief.Status)
	if status == "" {
		status = string(domain.BriefStatusDraft)
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		brief.ID,
		brief.Topic,
		brief.Content,
		status,
		brief.Score,
		brief.Attempts,
	)
	if err != nil {
		return fmt.Errorf("failed to save brief: %w", err)
	}
	return nil
}

// GetByID retrieves a brief by id.
func (r *BriefRepo) GetByID(ctx context.Context, id string) (*domain.Brief, error) {
	query := `
		SELECT id, topic, content, status, score, attempts, created_at, updated_at
		FROM briefs
		WHERE id = $1
	`

	var dest briefRow
	err := r.db.GetContext(ctx, &dest, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrBriefNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brief: %w", err)
	}
	return dest.toDomain(), nil
}

// ClaimNext claims the oldest draft brief and marks it refining. The
// FOR UPDATE SKIP LOCKED keeps concurrent workers off the same brief.
func (r *BriefRepo) ClaimNext(ctx context.Context) (*domain.Brief, error) {
	query := `
		UPDATE briefs
		SET status = 'refining', updated_at = NOW()
		WHERE id = (
			SELECT id FROM briefs
			WHERE status = 'draft'
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, topic, content, status, score, attempts, created_at, updated_at
	`

	var dest briefRow
	err := r.db.GetContext(ctx, &dest, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Nothing pending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim brief: %w", err)
	}
	return dest.toDomain(), nil
}

// Finish records the terminal state of a refinement run.
func (r *BriefRepo) Finish(
	ctx context.Context,
	id string,
	status domain.BriefStatus,
	score float64,
	attempts int,
) error {
	query := `
		UPDATE briefs
		SET status = $2, score = $3, attempts = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, string(status), score, attempts)
	if err != nil {
		return fmt.Errorf("failed to finish brief: %w", err)
	}
	return nil
}

type briefRow struct {
	ID        string    `db:"id"`
	Topic     string    `db:"topic"`
	Content   string    `db:"content"`
	Status    string    `db:"status"`
	Score     float64   `db:"score"`
	Attempts  int       `db:"attempts"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row briefRow) toDomain() *domain.Brief {
	return &domain.Brief{
		ID:        row.ID,
		Topic:     row.Topic,
		Content:   row.Content,
		Status:    domain.BriefStatus(row.Status),
		Score:     row.Score,
		Attempts:  row.Attempts,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
