// Package health provides liveness and readiness probes.
//
// Every registered check runs in its own goroutine at a fixed interval and
// flips state only after consecutive failures (3) or successes (1), so a
// single slow answer does not flap the probe.
//
// Checks are either required or optional. A failing required check makes the
// probe unhealthy (503). A failing optional check only degrades it: the probe
// still answers 200 and names the check in the body.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Probe selects the endpoint a check contributes to.
type Probe int

const (
	Liveness Probe = iota
	Readiness
)

// Probe statuses reported in endpoint bodies.
const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

const (
	failureThreshold = 3
	successThreshold = 1
)

// Check describes one registered check.
type Check struct {
	Name    string
	Probe   Probe
	Timeout time.Duration
	Func    CheckFunc
	// Optional checks degrade the probe instead of failing it.
	Optional bool
}

// check is the runtime state of a Check. run is only called from one
// goroutine; healthy and lastErr are read concurrently by the endpoints.
type check struct {
	Check

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	err := c.Func(ctx)
	c.lastErr.Store(&err)

	if err != nil {
		c.oks = 0
		c.fails++
		if c.fails >= failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.oks++
	if c.oks >= successThreshold {
		c.healthy.Store(true)
	}
}

func (c *check) failure() string {
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error()
	}
	return "check is unhealthy"
}

// Report is the evaluated state of one probe.
type Report struct {
	Status string
	// Checks maps failing check names to their last error.
	Checks map[string]string
}

// Health manages the checks of a service.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*check
	cancel context.CancelFunc
}

// New creates a Health that reports not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// Add registers c. Checks start healthy.
func (h *Health) Add(c Check) {
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	rc := &check{Check: c}
	rc.healthy.Store(true)

	h.mu.Lock()
	h.checks = append(h.checks, rc)
	h.mu.Unlock()
}

// Start runs every registered check at interval until Stop or ctx is done.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := append([]*check(nil), h.checks...)
	h.mu.Unlock()

	for _, c := range checks {
		go loop(ctx, c, interval)
	}
}

func loop(ctx context.Context, c *check, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

// Stop cancels the check goroutines. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady sets the manual readiness gate.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Evaluate reports the current state of probe p.
func (h *Health) Evaluate(p Probe) Report {
	h.mu.RLock()
	checks := append([]*check(nil), h.checks...)
	h.mu.RUnlock()

	r := Report{Status: StatusOK, Checks: map[string]string{}}
	if p == Readiness && !h.ready.Load() {
		r.Status = StatusUnhealthy
		r.Checks["_readiness"] = "service is not ready"
	}

	for _, c := range checks {
		if c.Probe != p || c.healthy.Load() {
			continue
		}
		r.Checks[c.Name] = c.failure()
		switch {
		case !c.Optional:
			r.Status = StatusUnhealthy
		case r.Status == StatusOK:
			r.Status = StatusDegraded
		}
	}
	return r
}

// IsReady reports whether the readiness probe would answer 200.
func (h *Health) IsReady() bool {
	return h.Evaluate(Readiness).Status != StatusUnhealthy
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, h.Evaluate(Liveness))
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, h.Evaluate(Readiness))
}

func writeReport(w http.ResponseWriter, r Report) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("status")
	e.Str(r.Status)
	if len(r.Checks) > 0 {
		names := make([]string, 0, len(r.Checks))
		for name := range r.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		e.FieldStart("checks")
		e.ObjStart()
		for _, name := range names {
			e.FieldStart(name)
			e.Str(r.Checks[name])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	status := http.StatusOK
	if r.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
