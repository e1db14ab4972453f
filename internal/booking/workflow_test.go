package booking

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healpointhq/clinic-platform/internal/domain"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/internal/store"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

func newTestWorkflow(t *testing.T) (*Workflow, *state.Container) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	container := state.New(store.New(client, logging.New("error")))
	require.NoError(t, container.Load(context.Background()))
	w := NewWorkflow(container, logging.New("error"), nil)
	w.now = func() time.Time { return time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC) }
	return w, container
}

func TestBeginDefaults(t *testing.T) {
	w, _ := newTestWorkflow(t)

	draft, err := w.Begin("s1", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", draft.DoctorID)
	assert.Equal(t, "Dr. Sarah Johnson", draft.DoctorName)
	assert.Equal(t, "2026-08-29", draft.Form.Date)
	assert.Equal(t, "10:00 AM", draft.Form.Time) // first availability slot

	got, ok := w.Draft("s1")
	require.True(t, ok)
	assert.Equal(t, draft, got)
}

func TestBeginFallbackSlotWhenNoAvailability(t *testing.T) {
	w, container := newTestWorkflow(t)
	require.NoError(t, container.MutateDoctors(context.Background(), func(doctors []domain.Doctor) ([]domain.Doctor, error) {
		return append(doctors, domain.Doctor{ID: "3", Name: "Dr. No Slots", Specialty: "Neurologist"}), nil
	}))

	draft, err := w.Begin("s1", "3")
	require.NoError(t, err)
	assert.Equal(t, "10:00 AM", draft.Form.Time)
}

func TestBeginUnknownDoctor(t *testing.T) {
	w, _ := newTestWorkflow(t)

	_, err := w.Begin("s1", "ghost")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	_, ok := w.Draft("s1")
	assert.False(t, ok)
}

func TestCancelDiscardsDraft(t *testing.T) {
	w, _ := newTestWorkflow(t)

	_, err := w.Begin("s1", "1")
	require.NoError(t, err)
	require.NoError(t, w.Cancel("s1"))

	_, ok := w.Draft("s1")
	assert.False(t, ok)
	assert.ErrorIs(t, w.Cancel("s1"), ErrNoDraft)
}

func TestConfirmValidation(t *testing.T) {
	w, container := newTestWorkflow(t)
	ctx := context.Background()

	_, err := w.Begin("s1", "1")
	require.NoError(t, err)

	// Empty patient name never appends; the draft survives.
	_, err = w.Confirm(ctx, "s1", Form{ContactNumber: "555"})
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.Empty(t, container.Appointments())
	_, ok := w.Draft("s1")
	assert.True(t, ok, "validation failure must keep the session composing")

	// Empty contact number is rejected the same way.
	_, err = w.Confirm(ctx, "s1", Form{PatientName: "Pat"})
	assert.ErrorIs(t, err, ErrInvalidForm)
	_, ok = w.Draft("s1")
	assert.True(t, ok)
}

func TestConfirmPrependsAppointment(t *testing.T) {
	w, container := newTestWorkflow(t)
	ctx := context.Background()

	// Pre-existing log entry to verify prepend semantics.
	prior := domain.Appointment{
		ID: "prior", DoctorID: "2", DoctorName: "Dr. Michael Smith",
		PatientName: "Sam", ContactNumber: "556", Date: "2026-08-01",
		Time: "9:00 AM", Status: domain.StatusConfirmed,
	}
	require.NoError(t, container.MutateAppointments(ctx, func(log []domain.Appointment) ([]domain.Appointment, error) {
		return append(log, prior), nil
	}))

	_, err := w.Begin("s1", "1")
	require.NoError(t, err)

	appt, err := w.Confirm(ctx, "s1", Form{
		Date: "2026-09-01", Time: "2:00 PM",
		PatientName: "Pat", ContactNumber: "555",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, domain.StatusConfirmed, appt.Status)
	assert.Equal(t, "1", appt.DoctorID)
	assert.Equal(t, "Dr. Sarah Johnson", appt.DoctorName)

	log := container.Appointments()
	require.Len(t, log, 2)
	assert.Equal(t, appt, log[0], "new appointment must sit at the head")
	assert.Equal(t, prior, log[1], "prior entries must shift, not be overwritten")

	// Confirm transitions back to idle.
	_, ok := w.Draft("s1")
	assert.False(t, ok)
}

func TestConfirmSnapshotsDoctorName(t *testing.T) {
	w, container := newTestWorkflow(t)
	ctx := context.Background()

	_, err := w.Begin("s1", "1")
	require.NoError(t, err)

	// Rename the doctor while the booking is composing.
	require.NoError(t, container.MutateDoctors(ctx, func(doctors []domain.Doctor) ([]domain.Doctor, error) {
		doctors[0].Name = "Dr. Renamed"
		return doctors, nil
	}))

	appt, err := w.Confirm(ctx, "s1", Form{PatientName: "Pat", ContactNumber: "555"})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sarah Johnson", appt.DoctorName, "name is snapshotted at booking start")
}

func TestConfirmWithoutDraft(t *testing.T) {
	w, _ := newTestWorkflow(t)

	_, err := w.Confirm(context.Background(), "s1", Form{PatientName: "Pat", ContactNumber: "555"})
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestConfirmDefaultsDateAndTimeFromDraft(t *testing.T) {
	w, _ := newTestWorkflow(t)

	_, err := w.Begin("s1", "1")
	require.NoError(t, err)

	appt, err := w.Confirm(context.Background(), "s1", Form{PatientName: "Pat", ContactNumber: "555"})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29", appt.Date)
	assert.Equal(t, "10:00 AM", appt.Time)
}
