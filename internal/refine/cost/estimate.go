// Package cost estimates the monetary cost of refinement runs.
package cost

import "math"

// Pricing holds the per-unit costs of one refinement attempt. The numbers are
// a business decision, sourced from config in production; the defaults keep
// estimates sane when no pricing is configured.
type Pricing struct {
	PerFixer               float64 `yaml:"per_fixer"`
	ReconciliationAndScore float64 `yaml:"reconciliation_and_score"`
}

// DefaultPricing is the fallback when config omits a pricing section.
var DefaultPricing = Pricing{
	PerFixer:               0.08,
	ReconciliationAndScore: 0.12,
}

// Estimate returns the estimated cost of attemptCount refinement attempts,
// each deploying fixerCount fixers. Cost scales linearly with attempts; zero
// attempts cost exactly zero regardless of fixer count. Rounded to 4 decimal
// places.
func Estimate(fixerCount, attemptCount int) float64 {
	return DefaultPricing.Estimate(fixerCount, attemptCount)
}

// Estimate computes the cost under this pricing.
func (p Pricing) Estimate(fixerCount, attemptCount int) float64 {
	if attemptCount <= 0 || fixerCount < 0 {
		return 0
	}
	perAttempt := p.PerFixer*float64(fixerCount) + p.ReconciliationAndScore
	return round4(float64(attemptCount) * perAttempt)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
