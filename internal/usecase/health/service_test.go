package health

import (
	"context"
	"errors"
	"testing"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func ok() Checker      { return checkerFunc(func(context.Context) error { return nil }) }
func failing() Checker { return checkerFunc(func(context.Context) error { return errors.New("down") }) }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(map[string]Checker{"openai": ok(), "catalog": ok()})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %s, want %s", report.Status, Healthy)
	}
	if report.Checks["openai"] != CheckOK || report.Checks["catalog"] != CheckOK {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_OneFailing(t *testing.T) {
	svc := New(map[string]Checker{"openai": ok(), "catalog": failing()})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["catalog"] != CheckError {
		t.Errorf("catalog check = %s, want %s", report.Checks["catalog"], CheckError)
	}
	if report.Checks["openai"] != CheckOK {
		t.Errorf("openai check = %s, want %s", report.Checks["openai"], CheckOK)
	}
}

func TestCheck_NilCheckerSkipped(t *testing.T) {
	svc := New(map[string]Checker{"openai": ok(), "audio": nil})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %s, want %s", report.Status, Healthy)
	}
	if _, ok := report.Checks["audio"]; ok {
		t.Error("nil checker must not appear in the report")
	}
}
