// Package gate implements the admin access gate: one shared static password
// toggling a per-session unlocked flag. It is an access convenience, not a
// security boundary — no hashing, lockout, throttling, or audit trail, and
// nothing is persisted, so every session starts locked.
package gate

import (
	"crypto/subtle"
	"net/http"
	"sync"

	"github.com/healpointhq/clinic-platform/internal/http/middleware"
	"github.com/healpointhq/clinic-platform/internal/observability/metrics"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

// Gate tracks which sessions have unlocked the admin surface.
type Gate struct {
	password string
	logger   *logging.Logger
	metrics  *metrics.ClinicMetrics

	mu       sync.RWMutex
	unlocked map[string]struct{}
}

// New creates a gate guarding admin operations with the given password.
func New(password string, logger *logging.Logger, m *metrics.ClinicMetrics) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{
		password: password,
		logger:   logger,
		metrics:  m,
		unlocked: make(map[string]struct{}),
	}
}

// Attempt compares the submitted password against the configured literal and
// unlocks the session on a match. It reports whether the session is now
// unlocked.
func (g *Gate) Attempt(sessionID, password string) bool {
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		g.metrics.ObserveGateAttempt("denied")
		g.logger.Info("admin unlock denied", "session_id", sessionID)
		return false
	}
	g.mu.Lock()
	g.unlocked[sessionID] = struct{}{}
	g.mu.Unlock()
	g.metrics.ObserveGateAttempt("unlocked")
	g.logger.Info("admin unlocked", "session_id", sessionID)
	return true
}

// Lock relocks the session unconditionally.
func (g *Gate) Lock(sessionID string) {
	g.mu.Lock()
	delete(g.unlocked, sessionID)
	g.mu.Unlock()
	g.logger.Info("admin locked", "session_id", sessionID)
}

// Unlocked reports whether the session has passed the gate.
func (g *Gate) Unlocked(sessionID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.unlocked[sessionID]
	return ok
}

// Middleware rejects requests from sessions that have not unlocked the gate.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Unlocked(middleware.SessionID(r.Context())) {
			http.Error(w, `{"error": "admin locked"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
