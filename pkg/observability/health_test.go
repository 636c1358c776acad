package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthAggregation(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(BackendCheck("local", func() bool { return true }))
	hc.RegisterCheck(BackendCheck("cloud", func() bool { return false }))

	resp := hc.Check(context.Background())
	if resp.Status != HealthStatusDegraded {
		t.Errorf("one backend down should degrade, got %s", resp.Status)
	}
	if resp.Checks["local"].Status != HealthStatusHealthy {
		t.Errorf("local check = %+v", resp.Checks["local"])
	}
	if resp.Checks["cloud"].Status != HealthStatusDegraded {
		t.Errorf("cloud check = %+v", resp.Checks["cloud"])
	}
}

func TestHealthCriticalFailure(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(&HealthCheck{
		Name:      "runtime",
		CheckFunc: func(context.Context) error { return errors.New("connection refused") },
		Critical:  true,
	})

	resp := hc.Check(context.Background())
	if resp.Status != HealthStatusUnhealthy {
		t.Errorf("critical failure should be unhealthy, got %s", resp.Status)
	}

	rec := httptest.NewRecorder()
	hc.Handler()(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != 503 {
		t.Errorf("unhealthy should answer 503, got %d", rec.Code)
	}
	var body HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != HealthStatusUnhealthy {
		t.Errorf("body status = %s", body.Status)
	}
}

func TestHealthCheckTimeout(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(&HealthCheck{
		Name:      "slow",
		CheckFunc: func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() },
		Timeout:   10 * time.Millisecond,
	})

	resp := hc.Check(context.Background())
	if resp.Checks["slow"].Status != HealthStatusDegraded {
		t.Errorf("timed-out probe should degrade, got %+v", resp.Checks["slow"])
	}
}

func TestLocalBackendCheckProbesDaemon(t *testing.T) {
	// Model artifact on disk but daemon down: degraded, not healthy.
	hc := NewHealthChecker()
	hc.RegisterCheck(LocalBackendCheck("local",
		func() bool { return true },
		func(context.Context) bool { return false },
	))

	resp := hc.Check(context.Background())
	if resp.Status != HealthStatusDegraded {
		t.Errorf("unreachable daemon should degrade, got %s", resp.Status)
	}
	if resp.Checks["local"].Message != "runtime daemon not reachable" {
		t.Errorf("local check = %+v", resp.Checks["local"])
	}

	// Artifact missing: reported before the daemon is even probed.
	hc = NewHealthChecker()
	hc.RegisterCheck(LocalBackendCheck("local",
		func() bool { return false },
		func(context.Context) bool {
			t.Error("daemon probed despite missing artifact")
			return true
		},
	))

	resp = hc.Check(context.Background())
	if resp.Checks["local"].Message != "backend not available" {
		t.Errorf("local check = %+v", resp.Checks["local"])
	}

	// Both up: healthy.
	hc = NewHealthChecker()
	hc.RegisterCheck(LocalBackendCheck("local",
		func() bool { return true },
		func(context.Context) bool { return true },
	))

	resp = hc.Check(context.Background())
	if resp.Status != HealthStatusHealthy {
		t.Errorf("daemon up should be healthy, got %s", resp.Status)
	}
}

func TestHealthyService(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(BackendCheck("local", func() bool { return true }))

	rec := httptest.NewRecorder()
	hc.Handler()(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != 200 {
		t.Errorf("healthy should answer 200, got %d", rec.Code)
	}
}
