package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"portfolio-auth/internal/model"
)

type clientLimiter struct {
	general  *rate.Limiter
	auth     *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies per-client token buckets. Credential endpoints
// (/register, /login) get a tighter budget than the rest of the surface.
type RateLimitMiddleware struct {
	generalRPM int
	authRPM    int
	mu         sync.Mutex
	clients    map[string]*clientLimiter
}

func NewRateLimitMiddleware(generalRPM int, authRPM int) *RateLimitMiddleware {
	if generalRPM < 0 {
		generalRPM = 0
	}
	if authRPM < 0 {
		authRPM = 0
	}

	m := &RateLimitMiddleware{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		clients:    map[string]*clientLimiter{},
	}

	go m.cleanupLoop()

	return m
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := m.limiterFor(clientIP(r))

		bucket := limiter.general
		if isAuthPath(r.URL.Path) {
			bucket = limiter.auth
		}

		if bucket != nil && !bucket.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: "Too many requests"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthPath(path string) bool {
	return path == "/register" || path == "/login"
}

func (m *RateLimitMiddleware) limiterFor(ip string) *clientLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, ok := m.clients[ip]
	if !ok {
		limiter = &clientLimiter{
			general: newLimiter(m.generalRPM),
			auth:    newLimiter(m.authRPM),
		}
		m.clients[ip] = limiter
	}
	limiter.lastSeen = time.Now()

	return limiter
}

// newLimiter returns nil for a zero budget, meaning unlimited.
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
}

func (m *RateLimitMiddleware) cleanupLoop() {
	for range time.Tick(5 * time.Minute) {
		cutoff := time.Now().Add(-10 * time.Minute)

		m.mu.Lock()
		for ip, limiter := range m.clients {
			if limiter.lastSeen.Before(cutoff) {
				delete(m.clients, ip)
			}
		}
		m.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
