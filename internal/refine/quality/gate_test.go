package quality

import "testing"

func TestTierFor(t *testing.T) {
	tests := []struct {
		score  float64
		expect Tier
	}{
		{10.0, TierHigh},
		{8.0, TierHigh},
		{8.000001, TierHigh},
		{7.999999, TierAcceptable},
		{7.0, TierAcceptable},
		{6.0, TierAcceptable},
		{5.999999, TierFailed},
		{5.5, TierFailed},
		{0.0, TierFailed},
		{-3.2, TierFailed},
		{42.0, TierHigh},
	}

	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.expect {
			t.Errorf("TierFor(%v) = %s, want %s", tt.score, got, tt.expect)
		}
	}
}

func TestEvaluateDecisionTable(t *testing.T) {
	tests := []struct {
		name           string
		score          float64
		tier           Tier
		publishable    bool
		warningBadge   bool
		refundRequired bool
	}{
		{"high interior", 9.3, TierHigh, true, false, false},
		{"high boundary", 8.0, TierHigh, true, false, false},
		{"acceptable interior", 7.0, TierAcceptable, true, true, false},
		{"acceptable boundary", 6.0, TierAcceptable, true, true, false},
		{"failed interior", 5.5, TierFailed, false, false, true},
		{"failed just below boundary", 5.999999, TierFailed, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.score, 1)
			if result.Tier != tt.tier {
				t.Errorf("Tier = %s, want %s", result.Tier, tt.tier)
			}
			if result.Publishable != tt.publishable {
				t.Errorf("Publishable = %v, want %v", result.Publishable, tt.publishable)
			}
			if result.WarningBadge != tt.warningBadge {
				t.Errorf("WarningBadge = %v, want %v", result.WarningBadge, tt.warningBadge)
			}
			if result.RefundRequired != tt.refundRequired {
				t.Errorf("RefundRequired = %v, want %v", result.RefundRequired, tt.refundRequired)
			}
		})
	}
}

func TestEvaluatePreservesInputs(t *testing.T) {
	score := 7.123456789012345
	result := Evaluate(score, 4)
	if result.FinalScore != score {
		t.Errorf("FinalScore = %v, want exact %v", result.FinalScore, score)
	}
	if result.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", result.Attempts)
	}

	if got := Evaluate(8.0, 0); got.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0 passed through", got.Attempts)
	}
}
