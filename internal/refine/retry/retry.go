package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/stateofclarity/refinery/internal/refine/metrics"
)

// Config defines retry behavior for one agent operation.
type Config struct {
	AgentName         string
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration // 0 = uncapped
}

// DefaultConfig provides sensible defaults for an agent.
func DefaultConfig(agentName string) Config {
	return Config{
		AgentName:         agentName,
		MaxRetries:        3,
		InitialDelay:      1 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

func (c Config) withDefaults() Config {
	if c.AgentName == "" {
		c.AgentName = "agent"
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 1 * time.Second
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = 2.0
	}
	return c
}

// delayFor returns the backoff before the attempt following failed attempt n
// (1-indexed): InitialDelay × Multiplier^(n-1).
func (c Config) delayFor(attempt int) time.Duration {
	delay := float64(c.InitialDelay) * math.Pow(c.BackoffMultiplier, float64(attempt-1))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	return time.Duration(delay)
}

// AgentError is the terminal failure of a retried agent operation. It carries
// every error recorded across attempts, in attempt order.
type AgentError struct {
	AgentName string
	Attempts  int
	Errs      []error
	msg       string
}

func (e *AgentError) Error() string { return e.msg }

// Last returns the most recent recorded error, or nil if none were recorded.
func (e *AgentError) Last() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e.Errs[len(e.Errs)-1]
}

func (e *AgentError) Unwrap() []error { return e.Errs }

// Operation is a single agent call producing a value or failing.
type Operation[T any] func(ctx context.Context) (T, error)

// Option adjusts how the retry loop runs. Defaults are a real sleep and the
// process logger; tests inject fakes.
type Option func(*settings)

type settings struct {
	log   *slog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// WithLogger routes retry telemetry through log.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) { s.log = log }
}

// WithSleep replaces the backoff sleep, letting tests use a virtual clock.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *settings) { s.sleep = sleep }
}

func newSettings(opts []Option) settings {
	s := settings{
		log:   slog.Default(),
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op with exponential backoff, up to cfg.MaxRetries attempts. Every
// failure is retried; callers that want permanent errors to short-circuit
// should use DoSmart.
func Do[T any](ctx context.Context, cfg Config, op Operation[T], opts ...Option) (T, error) {
	return run(ctx, cfg, op, false, opts)
}

// DoSmart runs op like Do, but classifies each failure first and aborts
// immediately on non-retryable errors instead of burning the remaining
// attempts.
func DoSmart[T any](ctx context.Context, cfg Config, op Operation[T], opts ...Option) (T, error) {
	return run(ctx, cfg, op, true, opts)
}

// Wrap returns a callable with the same signature as op that transparently
// applies Do's retry policy around each invocation.
func Wrap[T any](cfg Config, op Operation[T], opts ...Option) Operation[T] {
	return func(ctx context.Context) (T, error) {
		return Do(ctx, cfg, op, opts...)
	}
}

// WrapSmart is Wrap with DoSmart's classification.
func WrapSmart[T any](cfg Config, op Operation[T], opts ...Option) Operation[T] {
	return func(ctx context.Context) (T, error) {
		return DoSmart(ctx, cfg, op, opts...)
	}
}

func run[T any](ctx context.Context, cfg Config, op Operation[T], smart bool, opts []Option) (T, error) {
	cfg = cfg.withDefaults()
	st := newSettings(opts)

	var zero T
	var errs []error

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				st.log.Info(fmt.Sprintf("[%s] succeeded after %d retries", cfg.AgentName, attempt-1),
					"agent", cfg.AgentName, "attempt", attempt)
			}
			metrics.AgentCallsTotal.WithLabelValues(cfg.AgentName, "success").Inc()
			return result, nil
		}

		errs = append(errs, err)

		if smart {
			if retryable, reason := Classify(err); !retryable {
				st.log.Error(fmt.Sprintf("[%s] non-retryable error, aborting", cfg.AgentName),
					"agent", cfg.AgentName, "attempt", attempt, "reason", reason, "error", err)
				metrics.NonRetryableErrorsTotal.WithLabelValues(cfg.AgentName).Inc()
				metrics.AgentCallsTotal.WithLabelValues(cfg.AgentName, "aborted").Inc()
				return zero, &AgentError{
					AgentName: cfg.AgentName,
					Attempts:  1,
					Errs:      []error{err},
					msg:       fmt.Sprintf("%s aborted on non-retryable error: %s", cfg.AgentName, err),
				}
			}
		}

		if attempt < cfg.MaxRetries {
			delay := cfg.delayFor(attempt)
			st.log.Info(fmt.Sprintf("[%s] attempt %d failed, retrying in %s", cfg.AgentName, attempt, delay),
				"agent", cfg.AgentName, "attempt", attempt, "delay", delay, "error", err)
			metrics.RetryAttemptsTotal.WithLabelValues(cfg.AgentName).Inc()
			if serr := st.sleep(ctx, delay); serr != nil {
				return zero, serr
			}
		}
	}

	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	st.log.Error(fmt.Sprintf("[%s] failed after %d attempts", cfg.AgentName, cfg.MaxRetries),
		"agent", cfg.AgentName, "attempts", cfg.MaxRetries, "errors", strings.Join(msgs, "; "))
	metrics.RetriesExhaustedTotal.WithLabelValues(cfg.AgentName).Inc()
	metrics.AgentCallsTotal.WithLabelValues(cfg.AgentName, "exhausted").Inc()

	return zero, &AgentError{
		AgentName: cfg.AgentName,
		Attempts:  len(errs),
		Errs:      errs,
		msg:       fmt.Sprintf("%s failed after %d attempts", cfg.AgentName, cfg.MaxRetries),
	}
}
