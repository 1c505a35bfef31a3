package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakeSleeper records requested delays instead of sleeping.
type fakeSleeper struct {
	delays []time.Duration
}

func (f *fakeSleeper) sleep(_ context.Context, d time.Duration) error {
	f.delays = append(f.delays, d)
	return nil
}

func testConfig(agent string) Config {
	return Config{
		AgentName:         agent,
		MaxRetries:        3,
		InitialDelay:      100 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	result, err := Do(context.Background(), testConfig("scorer"), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	}, WithSleep(sleeper.sleep))
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("delays = %v, want none", sleeper.delays)
	}
}

func TestDoRetriesWithBackoff(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	result, err := Do(context.Background(), testConfig("scorer"), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, fmt.Errorf("boom %d", calls)
		}
		return 42, nil
	}, WithSleep(sleeper.sleep))
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("delays = %v, want %v", sleeper.delays, want)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Errorf("delays[%d] = %v, want %v", i, sleeper.delays[i], want[i])
		}
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	_, err := Do(context.Background(), testConfig("fixer-clarity"), func(context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("failure %d", calls)
	}, WithSleep(sleeper.sleep))
	if err == nil {
		t.Fatal("Do() error = nil, want AgentError")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	var agentErr *AgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("error type = %T, want *AgentError", err)
	}
	if agentErr.Attempts != 3 || len(agentErr.Errs) != 3 {
		t.Errorf("Attempts = %d, len(Errs) = %d, want 3 and 3", agentErr.Attempts, len(agentErr.Errs))
	}
	if want := "fixer-clarity failed after 3 attempts"; agentErr.Error() != want {
		t.Errorf("Error() = %q, want %q", agentErr.Error(), want)
	}
	if agentErr.Last() == nil || agentErr.Last().Error() != "failure 3" {
		t.Errorf("Last() = %v, want failure 3", agentErr.Last())
	}
	// Errors preserved in attempt order.
	for i, e := range agentErr.Errs {
		if want := fmt.Sprintf("failure %d", i+1); e.Error() != want {
			t.Errorf("Errs[%d] = %q, want %q", i, e.Error(), want)
		}
	}
}

func TestDoSmartRetriesTransient(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	result, err := DoSmart(context.Background(), testConfig("fixer-sourcing"), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("Connection timeout")
		}
		return "fixed", nil
	}, WithSleep(sleeper.sleep))
	if err != nil {
		t.Fatalf("DoSmart() error = %v", err)
	}
	if result != "fixed" {
		t.Errorf("result = %q, want %q", result, "fixed")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoSmartAbortsOnPermanentError(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	_, err := DoSmart(context.Background(), testConfig("fixer-accuracy"), func(context.Context) (string, error) {
		calls++
		return "", errors.New("401 Unauthorized")
	}, WithSleep(sleeper.sleep))
	if err == nil {
		t.Fatal("DoSmart() error = nil, want AgentError")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("delays = %v, want none", sleeper.delays)
	}

	var agentErr *AgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("error type = %T, want *AgentError", err)
	}
	if len(agentErr.Errs) != 1 {
		t.Errorf("len(Errs) = %d, want 1", len(agentErr.Errs))
	}
	if !strings.Contains(agentErr.Error(), "non-retryable error") {
		t.Errorf("Error() = %q, want it to mention non-retryable error", agentErr.Error())
	}
	if !strings.Contains(agentErr.Error(), "401 Unauthorized") {
		t.Errorf("Error() = %q, want it to name the inner error", agentErr.Error())
	}
}

func TestDoSmartMixedSequenceStopsOnPermanent(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0
	cfg := testConfig("fixer-neutrality")
	cfg.MaxRetries = 5

	_, err := DoSmart(context.Background(), cfg, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("timeout")
		}
		return "", errors.New("401 unauthorized")
	}, WithSleep(sleeper.sleep))
	if err == nil {
		t.Fatal("DoSmart() error = nil, want AgentError")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (stop on permanent, not exhaust 5)", calls)
	}
	if len(sleeper.delays) != 1 {
		t.Errorf("delays = %v, want exactly one backoff", sleeper.delays)
	}
}

func TestWrapForwardsResult(t *testing.T) {
	sleeper := &fakeSleeper{}
	calls := 0

	wrapped := Wrap(testConfig("reconciler"), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("flaky")
		}
		return 7, nil
	}, WithSleep(sleeper.sleep))

	got, err := wrapped(context.Background())
	if err != nil {
		t.Fatalf("wrapped() error = %v", err)
	}
	if got != 7 {
		t.Errorf("wrapped() = %d, want 7", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoHonorsContextDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, testConfig("scorer"), func(context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDelayFor(t *testing.T) {
	cfg := Config{
		InitialDelay:      1 * time.Second,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := cfg.delayFor(tt.attempt); got != tt.expected {
			t.Errorf("delayFor(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}

	cfg.MaxDelay = 3 * time.Second
	if got := cfg.delayFor(4); got != 3*time.Second {
		t.Errorf("delayFor(4) with cap = %v, want 3s", got)
	}
}
