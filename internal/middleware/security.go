package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type contextKey string

const cspNonceKey contextKey = "csp_nonce"

// MaxBodySize limits request bodies. Voice media uploads are the largest
// legitimate payload.
const MaxBodySize = 10 << 20 // 10 MB

// generateNonce returns a base64 nonce for the CSP header.
func generateNonce() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// CSPNonceFromContext returns the per-request CSP nonce, or "" when absent.
func CSPNonceFromContext(ctx context.Context) string {
	if nonce, ok := ctx.Value(cspNonceKey).(string); ok {
		return nonce
	}
	return ""
}

// SecurityHeadersMiddleware sets standard security headers and a CSP with a
// per-request script nonce.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := generateNonce()
		if err != nil {
			log.Error().Err(err).Msg("Failed to generate CSP nonce")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		w.Header().Set("Content-Security-Policy", fmt.Sprintf(
			"default-src 'self'; script-src 'self' 'unsafe-eval' 'nonce-%s'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'",
			nonce))

		r = r.WithContext(context.WithValue(r.Context(), cspNonceKey, nonce))
		next.ServeHTTP(w, r)
	})
}

// visitor tracks request timestamps for one client IP.
type visitor struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// RateLimiter is a sliding-window per-IP rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	cleanup  time.Duration
}

// NewRateLimiter creates a RateLimiter allowing rate requests per window.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		cleanup:  2 * window,
	}
}

// Allow reports whether a request from ip is within the limit, recording it
// if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	// Drop timestamps outside the window
	cutoff := now.Add(-rl.window)
	kept := v.timestamps[:0]
	for _, ts := range v.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	v.timestamps = kept

	if len(v.timestamps) >= rl.rate {
		return false
	}

	v.timestamps = append(v.timestamps, now)

	// Opportunistic cleanup of idle visitors
	if len(rl.visitors) > 1000 {
		for ip, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.cleanup {
				delete(rl.visitors, ip)
			}
		}
	}

	return true
}

// RateLimitConfig holds per-class rate limiters.
type RateLimitConfig struct {
	// AuthLimiter covers login and signup, the brute-force targets
	AuthLimiter *RateLimiter
	// APILimiter covers /api/ routes
	APILimiter *RateLimiter
	// GlobalLimiter covers everything else
	GlobalLimiter *RateLimiter
}

// NewDefaultRateLimitConfig returns production defaults.
func NewDefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		AuthLimiter:   NewRateLimiter(10, time.Minute),
		APILimiter:    NewRateLimiter(120, time.Minute),
		GlobalLimiter: NewRateLimiter(300, time.Minute),
	}
}

func isAuthPath(path string) bool {
	return path == "/api/login" || path == "/api/signup" ||
		path == "/login" || strings.HasPrefix(path, "/auth/")
}

// RateLimitMiddleware applies the limiter matching the request class.
func RateLimitMiddleware(config *RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetClientIP(r)

			var limiter *RateLimiter
			switch {
			case isAuthPath(r.URL.Path):
				limiter = config.AuthLimiter
			case strings.HasPrefix(r.URL.Path, "/api/"):
				limiter = config.APILimiter
			default:
				limiter = config.GlobalLimiter
			}

			if !limiter.Allow(ip) {
				log.Warn().
					Str("client_ip", ip).
					Str("path", r.URL.Path).
					Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimitBodyMiddleware caps request body size.
func LimitBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
		}
		next.ServeHTTP(w, r)
	})
}
