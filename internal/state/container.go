// Package state owns the live in-memory mirror of the clinic's four persisted
// records plus per-session view state. It is the single source of truth
// during a session; every successful mutation is committed back through the
// store synchronously, replacing the whole record.
package state

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/healpointhq/clinic-platform/internal/domain"
	"github.com/healpointhq/clinic-platform/internal/store"
)

// Filter is the per-session doctor list view state.
type Filter struct {
	Query     string `json:"query"`
	Specialty string `json:"specialty"`
}

// Container holds the four live collections. All access is mutex-guarded:
// the logical model is a single actor, but HTTP serving is concurrent.
type Container struct {
	store *store.Store

	mu           sync.RWMutex
	doctors      []domain.Doctor
	appointments []domain.Appointment
	specialties  []domain.Specialty
	settings     domain.AppSettings
	filters      map[string]Filter
}

// New creates an empty container over the given store. Call Load before
// serving.
func New(s *store.Store) *Container {
	if s == nil {
		panic("state: store cannot be nil")
	}
	return &Container{
		store:   s,
		filters: make(map[string]Filter),
	}
}

// Load hydrates all four records from the store, seeding defaults where the
// store is empty.
func (c *Container) Load(ctx context.Context) error {
	doctors, err := c.store.LoadDoctors(ctx)
	if err != nil {
		return fmt.Errorf("state: hydrate doctors: %w", err)
	}
	appointments, err := c.store.LoadAppointments(ctx)
	if err != nil {
		return fmt.Errorf("state: hydrate appointments: %w", err)
	}
	specialties, err := c.store.LoadSpecialties(ctx)
	if err != nil {
		return fmt.Errorf("state: hydrate specialties: %w", err)
	}
	settings, err := c.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("state: hydrate settings: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.doctors = doctors
	c.appointments = appointments
	c.specialties = specialties
	c.settings = settings
	return nil
}

// Doctors returns a copy of the roster in insertion order.
func (c *Container) Doctors() []domain.Doctor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Doctor(nil), c.doctors...)
}

// DoctorByID looks up one roster entry.
func (c *Container) DoctorByID(id string) (domain.Doctor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.doctors {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Doctor{}, false
}

// Appointments returns a copy of the booking log, most recent first.
func (c *Container) Appointments() []domain.Appointment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Appointment(nil), c.appointments...)
}

// Specialties returns a copy of the catalog.
func (c *Container) Specialties() []domain.Specialty {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Specialty(nil), c.specialties...)
}

// Settings returns the branding record.
func (c *Container) Settings() domain.AppSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// FilteredDoctors returns the doctors whose name contains query as a
// case-insensitive substring and whose specialty matches the filter, in
// roster order. domain.AllSpecialties lifts the specialty constraint. The
// view is recomputed on demand and never persisted.
func (c *Container) FilteredDoctors(query, specialty string) []domain.Doctor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	needle := strings.ToLower(query)
	out := make([]domain.Doctor, 0, len(c.doctors))
	for _, d := range c.doctors {
		if !strings.Contains(strings.ToLower(d.Name), needle) {
			continue
		}
		if specialty != domain.AllSpecialties && d.Specialty != specialty {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SessionFilter returns the stored view state for a session, defaulting to
// an empty query over all specialties.
func (c *Container) SessionFilter(sessionID string) Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f, ok := c.filters[sessionID]; ok {
		return f
	}
	return Filter{Specialty: domain.AllSpecialties}
}

// SetSessionFilter stores view state for a session. An empty specialty is
// normalized to the all-specialties sentinel.
func (c *Container) SetSessionFilter(sessionID string, f Filter) {
	if f.Specialty == "" {
		f.Specialty = domain.AllSpecialties
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters[sessionID] = f
}

// MutateDoctors applies fn to a copy of the roster under the lock. When fn
// succeeds, the result becomes the live roster and is committed to the store.
func (c *Container) MutateDoctors(ctx context.Context, fn func([]domain.Doctor) ([]domain.Doctor, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(append([]domain.Doctor(nil), c.doctors...))
	if err != nil {
		return err
	}
	c.doctors = next
	c.store.SaveDoctors(ctx, next)
	return nil
}

// MutateAppointments applies fn to a copy of the log under the lock,
// committing the result on success.
func (c *Container) MutateAppointments(ctx context.Context, fn func([]domain.Appointment) ([]domain.Appointment, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(append([]domain.Appointment(nil), c.appointments...))
	if err != nil {
		return err
	}
	c.appointments = next
	c.store.SaveAppointments(ctx, next)
	return nil
}

// MutateSpecialties applies fn to a copy of the catalog under the lock,
// committing the result on success.
func (c *Container) MutateSpecialties(ctx context.Context, fn func([]domain.Specialty) ([]domain.Specialty, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(append([]domain.Specialty(nil), c.specialties...))
	if err != nil {
		return err
	}
	c.specialties = next
	c.store.SaveSpecialties(ctx, next)
	return nil
}

// MutateSettings applies fn to the settings record under the lock, committing
// the result on success.
func (c *Container) MutateSettings(ctx context.Context, fn func(domain.AppSettings) (domain.AppSettings, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.settings)
	if err != nil {
		return err
	}
	c.settings = next
	c.store.SaveSettings(ctx, next)
	return nil
}
