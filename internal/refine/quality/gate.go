// Package quality maps brief scores to tiers and publishing decisions.
package quality

// Tier is the coarse quality bucket a final score falls into.
type Tier string

const (
	TierHigh       Tier = "HIGH"
	TierAcceptable Tier = "ACCEPTABLE"
	TierFailed     Tier = "FAILED"
)

// Score thresholds. Closed-open intervals: [HighThreshold, inf) is HIGH,
// [AcceptableThreshold, HighThreshold) is ACCEPTABLE, below is FAILED.
const (
	HighThreshold       = 8.0
	AcceptableThreshold = 6.0
)

// TierFor buckets a score. Total over all floats; no range validation.
func TierFor(score float64) Tier {
	switch {
	case score >= HighThreshold:
		return TierHigh
	case score >= AcceptableThreshold:
		return TierAcceptable
	default:
		return TierFailed
	}
}

// GateResult is the publish/refund decision for a finished refinement run.
type GateResult struct {
	Tier           Tier    `json:"tier"`
	FinalScore     float64 `json:"final_score"`
	Attempts       int     `json:"attempts"`
	Publishable    bool    `json:"publishable"`
	WarningBadge   bool    `json:"warning_badge"`
	RefundRequired bool    `json:"refund_required"`
}

// Evaluate applies the fixed tier decision table:
//
//	HIGH       -> publish, no badge, no refund
//	ACCEPTABLE -> publish with warning badge, no refund
//	FAILED     -> do not publish, refund
//
// The score passes through untouched; no rounding.
func Evaluate(score float64, attempts int) GateResult {
	tier := TierFor(score)
	return GateResult{
		Tier:           tier,
		FinalScore:     score,
		Attempts:       attempts,
		Publishable:    tier != TierFailed,
		WarningBadge:   tier == TierAcceptable,
		RefundRequired: tier == TierFailed,
	}
}
