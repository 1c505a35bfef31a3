// Package agent holds the clients for external AI collaborators: the scorer
// that grades briefs and the fixers that propose edits.
package agent

import (
	"context"

	"github.com/stateofclarity/refinery/internal/core/domain"
)

// Scorer grades a brief across the scoring dimensions.
type Scorer interface {
	Name() string
	Score(ctx context.Context, brief *domain.Brief) (domain.DimensionScores, error)
}

// Fixer proposes edits improving one scoring dimension of a brief.
type Fixer interface {
	Name() string
	Dimension() string
	Fix(ctx context.Context, brief *domain.Brief) ([]domain.Edit, error)
}
