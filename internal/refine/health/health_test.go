package health

import (
	"context"
	"errors"
	"testing"
)

func TestCheckHealthAllHealthy(t *testing.T) {
	monitor := NewMonitor(map[string]Checker{
		"database": CheckerFunc(func(context.Context) error { return nil }),
		"redis":    CheckerFunc(func(context.Context) error { return nil }),
	})

	report := monitor.CheckHealth(context.Background())
	if report.SystemStatus != StatusHealthy {
		t.Errorf("SystemStatus = %s, want healthy", report.SystemStatus)
	}
	if len(report.Components) != 2 {
		t.Errorf("components = %d, want 2", len(report.Components))
	}
}

func TestCheckHealthWorstStatusWins(t *testing.T) {
	monitor := NewMonitor(map[string]Checker{
		"database": CheckerFunc(func(context.Context) error { return nil }),
		"redis":    CheckerFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	report := monitor.CheckHealth(context.Background())
	if report.SystemStatus != StatusCritical {
		t.Errorf("SystemStatus = %s, want critical", report.SystemStatus)
	}
	if report.Components["redis"].Error == "" {
		t.Error("redis component missing error detail")
	}
	if report.Components["database"].Status != StatusHealthy {
		t.Errorf("database status = %s, want healthy", report.Components["database"].Status)
	}
}

func TestCheckHealthCachesReport(t *testing.T) {
	calls := 0
	monitor := NewMonitor(map[string]Checker{
		"database": CheckerFunc(func(context.Context) error { calls++; return nil }),
	})

	monitor.CheckHealth(context.Background())
	monitor.CheckHealth(context.Background())
	if calls != 1 {
		t.Errorf("checker calls = %d, want 1 (second check served from cache)", calls)
	}
}
