// Package booking implements the appointment booking workflow: a per-session
// two-state machine (idle / composing) that turns a validated form into a new
// appointment at the head of the log.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healpointhq/clinic-platform/internal/domain"
	"github.com/healpointhq/clinic-platform/internal/observability/metrics"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

// defaultSlot is offered when a doctor has no availability to default from.
const defaultSlot = "10:00 AM"

var (
	// ErrDoctorNotFound rejects a booking start for an unknown doctor.
	ErrDoctorNotFound = errors.New("booking: doctor not found")
	// ErrNoDraft reports a confirm or cancel with no booking in progress.
	ErrNoDraft = errors.New("booking: no booking in progress")
	// ErrInvalidForm rejects a confirm with missing required fields; the
	// draft survives so the user can correct the form.
	ErrInvalidForm = errors.New("booking: patient name and contact number are required")
)

// Form carries the booking fields the patient fills in.
type Form struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	PatientName   string `json:"patientName"`
	ContactNumber string `json:"contactNumber"`
}

// Draft is the composing state for one session. DoctorID and DoctorName are
// snapshots taken when the booking started; a later rename or delete of the
// doctor does not touch them.
type Draft struct {
	DoctorID     string   `json:"doctorId"`
	DoctorName   string   `json:"doctorName"`
	Availability []string `json:"availability"`
	Form         Form     `json:"form"`
}

// Workflow manages booking drafts and appends confirmed appointments to the
// log.
type Workflow struct {
	container *state.Container
	logger    *logging.Logger
	metrics   *metrics.ClinicMetrics
	now       func() time.Time

	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewWorkflow constructs a booking workflow.
func NewWorkflow(container *state.Container, logger *logging.Logger, m *metrics.ClinicMetrics) *Workflow {
	if container == nil {
		panic("booking: container required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Workflow{
		container: container,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		drafts:    make(map[string]*Draft),
	}
}

// Begin moves the session from idle to composing for the chosen doctor,
// prefilling today's date and the doctor's first slot. Any prior draft for
// the session is replaced.
func (w *Workflow) Begin(sessionID, doctorID string) (Draft, error) {
	doctor, ok := w.container.DoctorByID(doctorID)
	if !ok {
		return Draft{}, fmt.Errorf("%w: %s", ErrDoctorNotFound, doctorID)
	}

	slot := defaultSlot
	if len(doctor.Availability) > 0 {
		slot = doctor.Availability[0]
	}
	draft := Draft{
		DoctorID:     doctor.ID,
		DoctorName:   doctor.Name,
		Availability: doctor.Availability,
		Form: Form{
			Date: w.now().UTC().Format("2006-01-02"),
			Time: slot,
		},
	}

	w.mu.Lock()
	w.drafts[sessionID] = &draft
	w.mu.Unlock()

	w.logger.Info("booking started", "session_id", sessionID, "doctor_id", doctorID)
	return draft, nil
}

// Draft returns the session's composing state, if any.
func (w *Workflow) Draft(sessionID string) (Draft, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok := w.drafts[sessionID]; ok {
		return *d, true
	}
	return Draft{}, false
}

// Cancel discards the session's draft and returns to idle.
func (w *Workflow) Cancel(sessionID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.drafts[sessionID]; !ok {
		return ErrNoDraft
	}
	delete(w.drafts, sessionID)
	w.logger.Info("booking cancelled", "session_id", sessionID)
	return nil
}

// Confirm validates the form and, on success, appends a Confirmed appointment
// at the head of the log and returns the session to idle. A validation
// failure keeps the draft so the session stays in composing.
func (w *Workflow) Confirm(ctx context.Context, sessionID string, form Form) (domain.Appointment, error) {
	w.mu.Lock()
	draft, ok := w.drafts[sessionID]
	w.mu.Unlock()
	if !ok {
		return domain.Appointment{}, ErrNoDraft
	}

	if strings.TrimSpace(form.PatientName) == "" || strings.TrimSpace(form.ContactNumber) == "" {
		w.metrics.ObserveBooking("rejected")
		return domain.Appointment{}, ErrInvalidForm
	}

	// Missing date/time fall back to the draft defaults.
	if form.Date == "" {
		form.Date = draft.Form.Date
	}
	if form.Time == "" {
		form.Time = draft.Form.Time
	}

	appointment := domain.Appointment{
		ID:            uuid.NewString(),
		DoctorID:      draft.DoctorID,
		DoctorName:    draft.DoctorName,
		PatientName:   form.PatientName,
		ContactNumber: form.ContactNumber,
		Date:          form.Date,
		Time:          form.Time,
		Status:        domain.StatusConfirmed,
	}

	err := w.container.MutateAppointments(ctx, func(log []domain.Appointment) ([]domain.Appointment, error) {
		return append([]domain.Appointment{appointment}, log...), nil
	})
	if err != nil {
		w.metrics.ObserveBooking("error")
		return domain.Appointment{}, err
	}

	w.mu.Lock()
	delete(w.drafts, sessionID)
	w.mu.Unlock()

	w.metrics.ObserveBooking("confirmed")
	w.logger.Info("booking confirmed",
		"session_id", sessionID,
		"appointment_id", appointment.ID,
		"doctor_id", appointment.DoctorID,
	)
	return appointment, nil
}
