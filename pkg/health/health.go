// Package health runs named readiness checks for the engine's HTTP surface.
package health

import (
	"sync"
	"time"
)

// Status is the overall or per-check health state.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc performs one health check.
type CheckFunc func() CheckResult

// CheckResult is the outcome of a single named check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report aggregates all checks at one point in time.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker runs registered checks and aggregates their status: any unhealthy
// check makes the report unhealthy, any degraded check degrades it.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
	order  []string
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc)}
}

// Register adds a named check. Re-registering a name replaces the check.
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.checks[name]; !exists {
		c.order = append(c.order, name)
	}
	c.checks[name] = fn
}

// Check runs all registered checks.
func (c *Checker) Check() Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult, len(c.checks)),
	}
	for _, name := range c.order {
		result := c.checks[name]()
		report.Checks[name] = result
		switch result.Status {
		case StatusUnhealthy:
			report.Status = StatusUnhealthy
		case StatusDegraded:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

// Healthy is a shorthand passing check result.
func Healthy(message string) CheckResult {
	return CheckResult{Status: StatusHealthy, Message: message}
}

// Unhealthy is a shorthand failing check result.
func Unhealthy(message string) CheckResult {
	return CheckResult{Status: StatusUnhealthy, Message: message}
}
