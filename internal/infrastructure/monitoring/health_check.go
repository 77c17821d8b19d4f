package monitoring

import (
	"context"
	"sync"
	"time"
)

// HealthCheck is a single named probe with its own timeout. Interval is used
// only by the optional background runner.
type HealthCheck struct {
	Name     string
	Check    func(ctx context.Context) (bool, error)
	Interval time.Duration
	Timeout  time.Duration
}

// HealthStatus is the aggregate result served on the health endpoint.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Healthy reports whether every probe passed.
func (s HealthStatus) Healthy() bool {
	return s.Status == "healthy"
}

type HealthChecker struct {
	mu     sync.RWMutex
	checks []HealthCheck
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

func (h *HealthChecker) AddCheck(name string, check func(ctx context.Context) (bool, error), interval, timeout time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, HealthCheck{
		Name:     name,
		Check:    check,
		Interval: interval,
		Timeout:  timeout,
	})
}

// CheckAll runs every probe once. A single failing probe marks the whole
// status unhealthy, with the failure reason recorded per check.
func (h *HealthChecker) CheckAll(ctx context.Context) HealthStatus {
	h.mu.RLock()
	checks := make([]HealthCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]string, len(checks)),
	}

	for _, check := range checks {
		ok, err := runProbe(ctx, check)
		switch {
		case err != nil:
			status.Status = "unhealthy"
			status.Checks[check.Name] = err.Error()
		case !ok:
			status.Status = "unhealthy"
			status.Checks[check.Name] = "check failed"
		default:
			status.Checks[check.Name] = "healthy"
		}
	}
	return status
}

// StartBackgroundChecks keeps probes warm so dependencies that carry their
// own circuit state recover without waiting for an external health poll.
func (h *HealthChecker) StartBackgroundChecks(ctx context.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, check := range h.checks {
		go func(check HealthCheck) {
			ticker := time.NewTicker(check.Interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					_, _ = runProbe(ctx, check)
				}
			}
		}(check)
	}
}

func runProbe(ctx context.Context, check HealthCheck) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()
	return check.Check(probeCtx)
}
