package domain

import "time"

// Edit is a single change a fixer proposed for a brief section.
type Edit struct {
	Fixer   string `json:"fixer"`
	Section string `json:"section"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// RefinementAttempt captures one pass of deploying fixers, reconciling their
// edits and re-scoring the brief.
type RefinementAttempt struct {
	AttemptNumber  int                `json:"attempt_number"`
	FixersDeployed []string           `json:"fixers_deployed"`
	EditsMade      []Edit             `json:"edits_made"`
	EditsSkipped   []Edit             `json:"edits_skipped"`
	ScoreBefore    float64            `json:"score_before"`
	ScoreAfter     float64            `json:"score_after"`
	DimensionDelta map[string]float64 `json:"dimension_delta"`
	ProcessingTime time.Duration      `json:"processing_time"`
}

// DimensionScores holds the per-dimension scores from one scoring pass plus
// the overall score the quality gate judges.
type DimensionScores struct {
	Overall    float64            `json:"overall"`
	Dimensions map[string]float64 `json:"dimensions"`
}

// Weakest returns up to n dimension names ordered from lowest score.
func (s DimensionScores) Weakest(n int) []string {
	type entry struct {
		name  string
		score float64
	}
	entries := make([]entry, 0, len(s.Dimensions))
	for name, score := range s.Dimensions {
		entries = append(entries, entry{name, score})
	}
	// Insertion sort; the dimension set is tiny.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if b.score < a.score || (b.score == a.score && b.name < a.name) {
				entries[j-1], entries[j] = b, a
			}
		}
	}
	if n > len(entries) {
		n = len(entries)
	}
	names := make([]string, 0, n)
	for _, e := range entries[:n] {
		names = append(names, e.name)
	}
	return names
}
