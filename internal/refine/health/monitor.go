package health

import (
	"context"
	"sync"
	"time"
)

// Checker pings one external dependency.
type Checker interface {
	Health(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Health(ctx context.Context) error { return f(ctx) }

// Monitor aggregates health status from the service's dependencies.
type Monitor struct {
	checkers   map[string]Checker
	lastCheck  time.Time
	lastReport Report
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor over named dependency checkers.
func NewMonitor(checkers map[string]Checker) *Monitor {
	return &Monitor{checkers: checkers}
}

// CheckHealth pings every dependency and aggregates the worst status.
// Results are cached briefly to avoid hammering the dependencies.
func (m *Monitor) CheckHealth(ctx context.Context) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < 10*time.Second && len(m.lastReport.Components) > 0 {
		return m.lastReport
	}

	report := Report{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(m.checkers)),
	}

	for name, checker := range m.checkers {
		component := ComponentHealth{Component: name, Status: StatusHealthy}
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := checker.Health(checkCtx); err != nil {
			component.Status = StatusCritical
			component.Error = err.Error()
			report.SystemStatus = StatusCritical
		}
		cancel()
		report.Components[name] = component
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
