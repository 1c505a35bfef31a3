package cost

import (
	"math"
	"testing"
)

func TestEstimateZeroAttempts(t *testing.T) {
	for _, fixers := range []int{0, 1, 3, 10, 100} {
		if got := Estimate(fixers, 0); got != 0 {
			t.Errorf("Estimate(%d, 0) = %v, want 0", fixers, got)
		}
	}
}

func TestEstimateScalesLinearlyWithAttempts(t *testing.T) {
	for _, fixers := range []int{0, 1, 3, 7} {
		one := Estimate(fixers, 1)
		two := Estimate(fixers, 2)
		if math.Abs(two-2*one) > 1e-3 {
			t.Errorf("Estimate(%d, 2) = %v, want ~2x Estimate(%d, 1) = %v", fixers, two, fixers, 2*one)
		}
	}

	// The scenario from the pricing review: double the attempts, double the cost.
	if one, two := Estimate(3, 1), Estimate(3, 2); math.Abs(two-2*one) > 1e-3 {
		t.Errorf("Estimate(3, 2) = %v, want twice Estimate(3, 1) = %v", two, 2*one)
	}
}

func TestEstimateMonotonicInFixerCount(t *testing.T) {
	for attempts := 1; attempts <= 3; attempts++ {
		prev := Estimate(0, attempts)
		if prev <= 0 {
			t.Errorf("Estimate(0, %d) = %v, want > 0 (fixed reconciliation cost)", attempts, prev)
		}
		for fixers := 1; fixers <= 10; fixers++ {
			cur := Estimate(fixers, attempts)
			if cur <= prev {
				t.Errorf("Estimate(%d, %d) = %v, not increasing from %v", fixers, attempts, cur, prev)
			}
			prev = cur
		}
	}
}

func TestEstimateRounding(t *testing.T) {
	p := Pricing{PerFixer: 0.0333333, ReconciliationAndScore: 0.1}
	got := p.Estimate(1, 1)
	if got != math.Round(got*10000)/10000 {
		t.Errorf("Estimate not rounded to 4 decimals: %v", got)
	}
}
