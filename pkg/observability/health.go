package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// HealthStatus represents the health status of the service
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is a single named probe. Critical failures make the whole
// service unhealthy; non-critical ones only degrade it. For this service the
// model backends are non-critical individually, since one of them down still
// leaves auto mode a path.
type HealthCheck struct {
	Name      string
	CheckFunc func(context.Context) error
	Timeout   time.Duration
	Critical  bool
}

// HealthChecker runs registered probes on demand.
type HealthChecker struct {
	mu     sync.RWMutex
	checks []*HealthCheck
}

// NewHealthChecker creates an empty checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

// RegisterCheck adds a probe. A zero timeout defaults to 5 seconds.
func (hc *HealthChecker) RegisterCheck(check *HealthCheck) {
	if check.Timeout == 0 {
		check.Timeout = 5 * time.Second
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks = append(hc.checks, check)
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	System    SystemInfo             `json:"system"`
}

// CheckStatus is one probe's result.
type CheckStatus struct {
	Status   HealthStatus `json:"status"`
	Message  string       `json:"message,omitempty"`
	Duration string       `json:"duration"`
}

// SystemInfo carries process-level stats.
type SystemInfo struct {
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemAllocMB    uint64 `json:"mem_alloc_mb"`
}

// Check runs every registered probe and aggregates the result.
func (hc *HealthChecker) Check(ctx context.Context) HealthResponse {
	hc.mu.RLock()
	checks := make([]*HealthCheck, len(hc.checks))
	copy(checks, hc.checks)
	hc.mu.RUnlock()

	results := make(map[string]CheckStatus, len(checks))
	overall := HealthStatusHealthy

	for _, check := range checks {
		status := runCheck(ctx, check)
		results[check.Name] = status

		switch {
		case status.Status == HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case status.Status == HealthStatusDegraded && overall == HealthStatusHealthy:
			overall = HealthStatusDegraded
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    results,
		System: SystemInfo{
			NumGoroutines: runtime.NumGoroutine(),
			NumCPU:        runtime.NumCPU(),
			MemAllocMB:    m.Alloc / 1024 / 1024,
		},
	}
}

func runCheck(ctx context.Context, check *HealthCheck) CheckStatus {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- check.CheckFunc(checkCtx) }()

	var err error
	select {
	case err = <-errCh:
	case <-checkCtx.Done():
		err = checkCtx.Err()
	}

	status := CheckStatus{Duration: time.Since(start).String()}
	switch {
	case err == nil:
		status.Status = HealthStatusHealthy
		status.Message = "OK"
	case check.Critical:
		status.Status = HealthStatusUnhealthy
		status.Message = err.Error()
	default:
		status.Status = HealthStatusDegraded
		status.Message = err.Error()
	}
	return status
}

// Handler serves the aggregated health report. Unhealthy maps to 503,
// degraded still answers 200.
func (hc *HealthChecker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := hc.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if response.Status == HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}

// BackendCheck probes a model backend's availability flag.
func BackendCheck(name string, available func() bool) *HealthCheck {
	return &HealthCheck{
		Name: name,
		CheckFunc: func(context.Context) error {
			if !available() {
				return errUnavailable
			}
			return nil
		},
		Timeout: time.Second,
	}
}

// LocalBackendCheck probes the on-device backend: the model artifact must be
// present and the inference daemon must answer its health endpoint.
func LocalBackendCheck(name string, artifact func() bool, reachable func(context.Context) bool) *HealthCheck {
	return &HealthCheck{
		Name: name,
		CheckFunc: func(ctx context.Context) error {
			if !artifact() {
				return errUnavailable
			}
			if !reachable(ctx) {
				return errDaemonUnreachable
			}
			return nil
		},
		Timeout: 3 * time.Second,
	}
}

var errUnavailable = &unavailableError{}

type unavailableError struct{}

func (*unavailableError) Error() string { return "backend not available" }

var errDaemonUnreachable = &daemonUnreachableError{}

type daemonUnreachableError struct{}

func (*daemonUnreachableError) Error() string { return "runtime daemon not reachable" }
