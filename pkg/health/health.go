// Package health implements liveness and readiness probes for the API
// server. Probes run on background tickers and use consecutive-failure and
// consecutive-success thresholds so a single blip does not flip the reported
// state.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

const (
	failureThreshold = 3
	successThreshold = 1
)

// probe is one registered check plus its runtime state.
//
// run is only ever called from the probe's own ticker goroutine, so the
// streak counters need no locking. healthy and lastErr are read from HTTP
// handler goroutines and therefore use atomics.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	failStreak int
	okStreak   int
}

func (p *probe) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(checkCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.okStreak = 0
		p.failStreak++
		if p.failStreak >= failureThreshold {
			p.healthy.Store(false)
		}
		return
	}
	p.failStreak = 0
	p.okStreak++
	if p.okStreak >= successThreshold {
		p.healthy.Store(true)
	}
}

func (p *probe) lastError() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// Health tracks the liveness and readiness probes of a service.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New returns a Health that reports not-ready until SetReady(true) is
// called after startup completes.
func New() *Health {
	return &Health{}
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{name: name, timeout: timeout, check: check}
	// Optimistic until the first threshold of failures.
	p.healthy.Store(true)
	return p
}

// AddLivenessCheck registers a probe deciding whether the process itself is
// functional, such as a goroutine leak detector.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a probe deciding whether the service can take
// traffic, such as database connectivity.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(name, timeout, check))
}

// Start launches one ticker goroutine per registered probe. Register all
// probes before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.run(ctx)
				}
			}
		}(p)
	}
}

// SetReady flips the manual readiness gate. Graceful shutdown sets it to
// false before draining so load balancers stop sending traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// passes.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.RLock()
	probes := h.readiness
	h.mu.RUnlock()

	for _, p := range probes {
		if !p.healthy.Load() {
			return false
		}
	}
	return true
}

// Stop cancels all probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 when all liveness probes pass, 503 with
// the failing probe names otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	probes := make([]*probe, len(h.liveness))
	copy(probes, h.liveness)
	h.mu.RUnlock()

	writeReport(w, failures(probes))
}

// ReadyEndpoint serves /readyz: 200 when the manual gate is open and all
// readiness probes pass, 503 with details otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready.Load()

	h.mu.RLock()
	probes := make([]*probe, len(h.readiness))
	copy(probes, h.readiness)
	h.mu.RUnlock()

	failed := failures(probes)
	if !ready {
		failed["_readiness"] = "service is not ready"
	}
	writeReport(w, failed)
}

// failures maps each unhealthy probe to its stored last error. The probe is
// not re-executed on the request path.
func failures(probes []*probe) map[string]string {
	failed := make(map[string]string)
	for _, p := range probes {
		if p.healthy.Load() {
			continue
		}
		if err := p.lastError(); err != nil {
			failed[p.name] = err.Error()
		} else {
			failed[p.name] = "check is unhealthy"
		}
	}
	return failed
}

func writeReport(w http.ResponseWriter, failed map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := report{Status: "ok"}
	status := http.StatusOK
	if len(failed) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failed
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
