package gate

import (
	"encoding/json"
	"net/http"

	"github.com/healpointhq/clinic-platform/internal/http/middleware"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

// Handler exposes the unlock and relock endpoints.
type Handler struct {
	gate   *Gate
	logger *logging.Logger
}

// NewHandler creates a gate HTTP handler.
func NewHandler(gate *Gate, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{gate: gate, logger: logger}
}

// LoginRequest carries the submitted admin password.
type LoginRequest struct {
	Password string `json:"password"`
}

// SessionState reports whether the session has passed the gate.
type SessionState struct {
	Unlocked bool `json:"unlocked"`
}

// Login checks the password and unlocks the session on a match.
// POST /admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	if !h.gate.Attempt(middleware.SessionID(r.Context()), req.Password) {
		http.Error(w, `{"error": "incorrect password"}`, http.StatusUnauthorized)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, SessionState{Unlocked: true})
}

// Logout relocks the session.
// POST /admin/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gate.Lock(middleware.SessionID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the session's current gate state.
// GET /admin/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	unlocked := h.gate.Unlocked(middleware.SessionID(r.Context()))
	writeJSON(w, h.logger, http.StatusOK, SessionState{Unlocked: unlocked})
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
