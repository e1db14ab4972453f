package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/healpointhq/clinic-platform/internal/domain"
	hpmiddleware "github.com/healpointhq/clinic-platform/internal/http/middleware"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

// Handler exposes the triage assistant over HTTP.
type Handler struct {
	bridge *Bridge
	logger *logging.Logger
}

// NewHandler creates an assistant HTTP handler.
func NewHandler(bridge *Bridge, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{bridge: bridge, logger: logger}
}

// Routes returns the assistant surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/messages", h.GetTranscript)
	r.Post("/messages", h.SendMessage)
	r.Get("/specialties", h.ListSpecialties)
	r.Post("/specialty", h.ApplySpecialty)
	return r
}

// GetTranscript returns the session's chat history, seeding the greeting on
// first access.
// GET /assistant/messages
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.bridge.Transcript(hpmiddleware.SessionID(r.Context())))
}

// SendRequest is a user chat turn.
type SendRequest struct {
	Message string `json:"message"`
}

// SendMessage forwards the user's message to the model and returns the
// updated transcript.
// POST /assistant/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	messages, err := h.bridge.Send(r.Context(), hpmiddleware.SessionID(r.Context()), req.Message)
	switch {
	case errors.Is(err, ErrEmptyMessage):
		http.Error(w, `{"error": "message is empty"}`, http.StatusBadRequest)
		return
	case errors.Is(err, ErrBusy):
		http.Error(w, `{"error": "a request is already in flight"}`, http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("assistant send failed", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, messages)
}

// ListSpecialties returns the fixed list the assistant may suggest from.
// GET /assistant/specialties
func (h *Handler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, domain.DefaultSpecialties())
}

// ApplyRequest carries the specialty the user accepted from a suggestion.
type ApplyRequest struct {
	Specialty string `json:"specialty"`
}

// ApplySpecialty sets the session's directory filter to the suggested
// specialty.
// POST /assistant/specialty
func (h *Handler) ApplySpecialty(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	filter := h.bridge.ApplySuggestion(hpmiddleware.SessionID(r.Context()), req.Specialty)
	writeJSON(w, h.logger, http.StatusOK, filter)
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
