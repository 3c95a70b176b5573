package health

import (
	"context"
	"sync"
	"time"
)

type Check func(ctx context.Context) error

type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// ProbeRunner runs registered dependency checks for the readiness endpoint.
type ProbeRunner struct {
	mu      sync.RWMutex
	timeout time.Duration
	checks  map[string]Check
}

func NewProbeRunner(timeout time.Duration) *ProbeRunner {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ProbeRunner{timeout: timeout, checks: make(map[string]Check)}
}

func (p *ProbeRunner) Register(name string, check Check) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checks[name] = check
}

func (p *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	p.mu.RLock()
	checks := make(map[string]Check, len(p.checks))
	for name, check := range p.checks {
		checks[name] = check
	}
	p.mu.RUnlock()

	ready := true
	results := make([]CheckResult, 0, len(checks))
	for name, check := range checks {
		cctx, cancel := context.WithTimeout(ctx, p.timeout)
		err := check(cctx)
		cancel()
		result := CheckResult{Name: name, Healthy: err == nil}
		if err != nil {
			result.Error = err.Error()
			ready = false
		}
		results = append(results, result)
	}
	return ready, results
}
