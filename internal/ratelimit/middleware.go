package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/neuralblades/platinum-V1-sub000/internal/metrics"
)

// Middleware returns a chi-compatible middleware enforcing policy per
// client IP for every route it wraps. The scope keeps windows for
// different route groups independent even for the same client. A nil
// limiter disables limiting.
func Middleware(limiter Limiter, scope string, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + "|" + ClientIP(r)
			ok, retryAfter := limiter.Allow(key, policy)
			if !ok {
				metrics.RecordRateLimitRejection(scope)
				reject(w, retryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(retryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": "Too many requests, please try again later.",
	})
}

// ClientIP extracts the client IP: first hop of X-Forwarded-For when
// present, otherwise the RemoteAddr host. IPs behind shared NAT are
// indistinguishable; that is accepted.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
