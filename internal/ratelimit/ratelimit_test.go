package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowExactlyMaxPerWindow(t *testing.T) {
	m := NewMemory()
	policy := Policy{Max: 5, Window: 15 * time.Minute}

	for i := 0; i < 5; i++ {
		ok, _ := m.Allow("1.2.3.4", policy)
		assert.True(t, ok, "request %d within the window should pass", i+1)
	}

	ok, retryAfter := m.Allow("1.2.3.4", policy)
	assert.False(t, ok, "request max+1 must be rejected")
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestWindowReset(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }
	policy := Policy{Max: 2, Window: time.Minute}

	m.Allow("ip", policy)
	m.Allow("ip", policy)
	ok, _ := m.Allow("ip", policy)
	require.False(t, ok)

	// After the window elapses the counter resets and a new request passes
	now = now.Add(time.Minute + time.Second)
	ok, _ = m.Allow("ip", policy)
	assert.True(t, ok)
}

func TestKeysAreIndependent(t *testing.T) {
	m := NewMemory()
	policy := Policy{Max: 1, Window: time.Minute}

	ok, _ := m.Allow("a", policy)
	require.True(t, ok)
	ok, _ = m.Allow("a", policy)
	require.False(t, ok)

	ok, _ = m.Allow("b", policy)
	assert.True(t, ok, "a second client must not share the first client's window")
}

func TestSweepDropsExpiredWindows(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }
	policy := Policy{Max: 1, Window: time.Minute}

	m.Allow("a", policy)
	m.Allow("b", policy)
	now = now.Add(2 * time.Minute)
	m.Sweep()

	assert.Empty(t, m.windows)
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	m := NewMemory()
	handler := Middleware(m, "test", Policy{Max: 1, Window: time.Minute})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	req.RemoteAddr = "10.0.0.9:4567"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 70.41.3.18")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}
