package ratelimit

import (
	"sync"
	"time"
)

// Policy is a fixed-window rate limit: Max requests per Window per client.
type Policy struct {
	Max    int
	Window time.Duration
}

// Route policies. Write endpoints that generate leads are kept tight;
// read-only listing traffic gets generous headroom.
var (
	LoginPolicy   = Policy{Max: 5, Window: 15 * time.Minute}
	SubmitPolicy  = Policy{Max: 10, Window: 15 * time.Minute}
	ListingPolicy = Policy{Max: 200, Window: 15 * time.Minute}
	ReadPolicy    = Policy{Max: 100, Window: 15 * time.Minute}
)

// Limiter is the rate-limiter abstraction injected into the middleware.
// The default backend is process-local memory; a shared store can back
// it for multi-instance deployments.
type Limiter interface {
	// Allow consumes one request for key under the policy. When the
	// request is rejected it returns the time until the window resets.
	Allow(key string, policy Policy) (ok bool, retryAfter time.Duration)
}

type window struct {
	count   int
	resetAt time.Time
}

// Memory is a mutex-guarded fixed-window Limiter keyed by client identity.
type Memory struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemory creates an in-memory limiter.
func NewMemory() *Memory {
	return &Memory{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow implements Limiter. A missing or expired window resets to a
// count of one and allows; otherwise the count is incremented and the
// request passes while count <= max.
func (m *Memory) Allow(key string, policy Policy) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		m.windows[key] = &window{count: 1, resetAt: now.Add(policy.Window)}
		return true, 0
	}

	w.count++
	if w.count <= policy.Max {
		return true, 0
	}
	return false, w.resetAt.Sub(now)
}

// Sweep drops expired windows. Called periodically so that one-off
// clients do not accumulate forever.
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, w := range m.windows {
		if now.After(w.resetAt) {
			delete(m.windows, key)
		}
	}
}
