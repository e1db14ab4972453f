package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	hpmiddleware "github.com/healpointhq/clinic-platform/internal/http/middleware"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

// Handler exposes the booking workflow and the appointment history.
type Handler struct {
	workflow  *Workflow
	container *state.Container
	logger    *logging.Logger
}

// NewHandler creates a booking HTTP handler.
func NewHandler(workflow *Workflow, container *state.Container, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{workflow: workflow, container: container, logger: logger}
}

// ListAppointments returns the booking log, most recent first.
// GET /appointments
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.container.Appointments())
}

// BeginRequest selects the doctor to book with.
type BeginRequest struct {
	DoctorID string `json:"doctorId"`
}

// Begin opens a booking draft for the session.
// POST /bookings
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	var req BeginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	draft, err := h.workflow.Begin(hpmiddleware.SessionID(r.Context()), req.DoctorID)
	if errors.Is(err, ErrDoctorNotFound) {
		http.Error(w, `{"error": "doctor not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to begin booking", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, draft)
}

// GetDraft returns the session's composing state.
// GET /bookings/draft
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.workflow.Draft(hpmiddleware.SessionID(r.Context()))
	if !ok {
		http.Error(w, `{"error": "no booking in progress"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, draft)
}

// Cancel discards the session's draft.
// DELETE /bookings/draft
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.workflow.Cancel(hpmiddleware.SessionID(r.Context())); errors.Is(err, ErrNoDraft) {
		http.Error(w, `{"error": "no booking in progress"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Confirm validates the form and appends the appointment.
// POST /bookings/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	appointment, err := h.workflow.Confirm(r.Context(), hpmiddleware.SessionID(r.Context()), form)
	switch {
	case errors.Is(err, ErrNoDraft):
		http.Error(w, `{"error": "no booking in progress"}`, http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidForm):
		http.Error(w, `{"error": "patient name and contact number are required"}`, http.StatusUnprocessableEntity)
		return
	case err != nil:
		h.logger.Error("failed to confirm booking", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, appointment)
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
