package directory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/healpointhq/clinic-platform/internal/domain"
	hpmiddleware "github.com/healpointhq/clinic-platform/internal/http/middleware"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

// Handler provides the HTTP surface for the doctor directory, specialty
// catalog, and settings.
type Handler struct {
	service   *Service
	container *state.Container
	logger    *logging.Logger
}

// NewHandler creates a directory HTTP handler.
func NewHandler(service *Service, container *state.Container, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, container: container, logger: logger}
}

// PublicRoutes returns the browse/search surface.
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/doctors", h.ListDoctors)
	r.Get("/specialties", h.ListSpecialties)
	r.Get("/settings", h.GetSettings)
	r.Get("/session/filter", h.GetFilter)
	r.Put("/session/filter", h.SetFilter)
	return r
}

// AdminRoutes returns the gated management surface.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/doctors", h.CreateDoctor)
	r.Put("/doctors/{doctorID}", h.UpdateDoctor)
	r.Delete("/doctors/{doctorID}", h.DeleteDoctor)
	r.Post("/specialties", h.CreateSpecialty)
	r.Delete("/specialties/{name}", h.DeleteSpecialty)
	r.Put("/settings", h.UpdateSettings)
	return r
}

// doctorsResponse carries the filtered roster plus the filter that produced
// it, so the widget can render its controls.
type doctorsResponse struct {
	Doctors []domain.Doctor `json:"doctors"`
	Filter  state.Filter    `json:"filter"`
}

// ListDoctors returns the roster filtered by the q/specialty query
// parameters, falling back to the session's stored filter when neither is
// supplied.
// GET /doctors?q=&specialty=
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	sessionID := hpmiddleware.SessionID(r.Context())
	filter := h.container.SessionFilter(sessionID)

	params := r.URL.Query()
	if params.Has("q") || params.Has("specialty") {
		filter = state.Filter{
			Query:     params.Get("q"),
			Specialty: params.Get("specialty"),
		}
		if filter.Specialty == "" {
			filter.Specialty = domain.AllSpecialties
		}
		h.container.SetSessionFilter(sessionID, filter)
	}

	writeJSON(w, h.logger, http.StatusOK, doctorsResponse{
		Doctors: h.container.FilteredDoctors(filter.Query, filter.Specialty),
		Filter:  filter,
	})
}

// ListSpecialties returns the catalog.
// GET /specialties
func (h *Handler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.container.Specialties())
}

// GetSettings returns the branding record.
// GET /settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.container.Settings())
}

// GetFilter returns the session's doctor list view state.
// GET /session/filter
func (h *Handler) GetFilter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.container.SessionFilter(hpmiddleware.SessionID(r.Context())))
}

// SetFilter stores the session's doctor list view state.
// PUT /session/filter
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var filter state.Filter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	sessionID := hpmiddleware.SessionID(r.Context())
	h.container.SetSessionFilter(sessionID, filter)
	writeJSON(w, h.logger, http.StatusOK, h.container.SessionFilter(sessionID))
}

// CreateDoctorRequest is the admin add-doctor form. Availability arrives as
// one comma-separated string, matching the admin form field.
type CreateDoctorRequest struct {
	Name         string `json:"name"`
	Specialty    string `json:"specialty"`
	Availability string `json:"availability"`
	Image        string `json:"image"`
}

// CreateDoctor adds a roster entry.
// POST /admin/doctors
func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	doctor, err := h.service.AddDoctor(r.Context(), req.Name, req.Specialty, ParseAvailability(req.Availability), req.Image)
	if errors.Is(err, ErrNameRequired) {
		http.Error(w, `{"error": "doctor name is required"}`, http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.logger.Error("failed to add doctor", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, doctor)
}

// UpdateDoctorRequest is a field-wise doctor patch. Absent fields are left
// unchanged; availability, when present, is the comma-separated form value.
type UpdateDoctorRequest struct {
	Name         *string `json:"name"`
	Specialty    *string `json:"specialty"`
	Availability *string `json:"availability"`
	Image        *string `json:"image"`
}

// UpdateDoctor merges a patch into one roster entry.
// PUT /admin/doctors/{doctorID}
func (h *Handler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")

	var req UpdateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	patch := DoctorPatch{
		Name:      req.Name,
		Specialty: req.Specialty,
		Image:     req.Image,
	}
	if req.Availability != nil {
		parsed := ParseAvailability(*req.Availability)
		if parsed == nil {
			parsed = []string{}
		}
		patch.Availability = parsed
	}

	doctor, err := h.service.UpdateDoctor(r.Context(), doctorID, patch)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "doctor not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to update doctor", "doctor_id", doctorID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, doctor)
}

// DeleteDoctor removes one roster entry. The destructive-action confirmation
// the UI collects is carried as ?confirm=true; without it the delete is
// rejected.
// DELETE /admin/doctors/{doctorID}?confirm=true
func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	confirmed := r.URL.Query().Get("confirm") == "true"

	err := h.service.DeleteDoctor(r.Context(), doctorID, confirmed)
	switch {
	case errors.Is(err, ErrConfirmRequired):
		http.Error(w, `{"error": "confirmation required"}`, http.StatusPreconditionRequired)
		return
	case errors.Is(err, ErrNotFound):
		http.Error(w, `{"error": "doctor not found"}`, http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("failed to delete doctor", "doctor_id", doctorID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateSpecialtyRequest is the admin add-specialty form.
type CreateSpecialtyRequest struct {
	Name string `json:"name"`
}

// CreateSpecialty appends a catalog entry; duplicates are accepted silently
// as no-ops.
// POST /admin/specialties
func (h *Handler) CreateSpecialty(w http.ResponseWriter, r *http.Request) {
	var req CreateSpecialtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if err := h.service.AddSpecialty(r.Context(), req.Name); err != nil {
		h.logger.Error("failed to add specialty", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.container.Specialties())
}

// DeleteSpecialty removes a catalog entry by name.
// DELETE /admin/specialties/{name}
func (h *Handler) DeleteSpecialty(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.service.RemoveSpecialty(r.Context(), name); err != nil {
		h.logger.Error("failed to remove specialty", "specialty", name, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.container.Specialties())
}

// UpdateSettingsRequest is a field-wise settings patch.
type UpdateSettingsRequest struct {
	AppName *string `json:"appName"`
	AppIcon *string `json:"appIcon"`
}

// UpdateSettings merges a patch into the branding record.
// PUT /admin/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), SettingsPatch{AppName: req.AppName, AppIcon: req.AppIcon})
	if err != nil {
		h.logger.Error("failed to update settings", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, settings)
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
