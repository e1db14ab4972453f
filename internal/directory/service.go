// Package directory manages the doctor roster, specialty catalog, and
// application settings.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/healpointhq/clinic-platform/internal/domain"
	"github.com/healpointhq/clinic-platform/internal/observability/metrics"
	"github.com/healpointhq/clinic-platform/internal/state"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

var (
	// ErrNameRequired rejects a doctor add with an empty name.
	ErrNameRequired = errors.New("directory: doctor name is required")
	// ErrNotFound reports an unknown doctor id.
	ErrNotFound = errors.New("directory: doctor not found")
	// ErrConfirmRequired rejects a delete without the explicit confirmation
	// step.
	ErrConfirmRequired = errors.New("directory: deletion requires confirmation")
)

// DoctorPatch is a field-wise merge for UpdateDoctor. Nil fields are left
// unchanged; the id is immutable.
type DoctorPatch struct {
	Name         *string
	Specialty    *string
	Image        *string
	Availability []string
}

// SettingsPatch is a field-wise merge for UpdateSettings.
type SettingsPatch struct {
	AppName *string
	AppIcon *string
}

// Service applies roster, specialty, and settings operations to the state
// container.
type Service struct {
	container *state.Container
	logger    *logging.Logger
	metrics   *metrics.ClinicMetrics
}

// NewService constructs a directory service.
func NewService(container *state.Container, logger *logging.Logger, m *metrics.ClinicMetrics) *Service {
	if container == nil {
		panic("directory: container required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{container: container, logger: logger, metrics: m}
}

// AddDoctor appends a new doctor with a fresh id. An empty image gets a
// deterministic placeholder derived from the id.
func (s *Service) AddDoctor(ctx context.Context, name, specialty string, availability []string, image string) (domain.Doctor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.metrics.ObserveMutation("add_doctor", "rejected")
		return domain.Doctor{}, ErrNameRequired
	}

	doctor := domain.Doctor{
		ID:           uuid.NewString(),
		Name:         name,
		Specialty:    specialty,
		Availability: availability,
	}
	if strings.TrimSpace(image) != "" {
		doctor.Image = image
	} else {
		doctor.Image = placeholderImage(doctor.ID)
	}

	err := s.container.MutateDoctors(ctx, func(doctors []domain.Doctor) ([]domain.Doctor, error) {
		return append(doctors, doctor), nil
	})
	if err != nil {
		return domain.Doctor{}, err
	}
	s.metrics.ObserveMutation("add_doctor", "ok")
	s.logger.Info("doctor added", "doctor_id", doctor.ID, "specialty", doctor.Specialty)
	return doctor, nil
}

// UpdateDoctor merges patch into the doctor with the given id.
func (s *Service) UpdateDoctor(ctx context.Context, id string, patch DoctorPatch) (domain.Doctor, error) {
	var updated domain.Doctor
	err := s.container.MutateDoctors(ctx, func(doctors []domain.Doctor) ([]domain.Doctor, error) {
		for i, d := range doctors {
			if d.ID != id {
				continue
			}
			if patch.Name != nil {
				d.Name = *patch.Name
			}
			if patch.Specialty != nil {
				d.Specialty = *patch.Specialty
			}
			if patch.Image != nil {
				d.Image = *patch.Image
			}
			if patch.Availability != nil {
				d.Availability = patch.Availability
			}
			doctors[i] = d
			updated = d
			return doctors, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	if err != nil {
		s.metrics.ObserveMutation("update_doctor", "rejected")
		return domain.Doctor{}, err
	}
	s.metrics.ObserveMutation("update_doctor", "ok")
	s.logger.Info("doctor updated", "doctor_id", id)
	return updated, nil
}

// DeleteDoctor removes the doctor with the given id. The caller must pass
// confirmed=true; deletion does not cascade to appointments, which keep their
// snapshot of the doctor's id and name.
func (s *Service) DeleteDoctor(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		s.metrics.ObserveMutation("delete_doctor", "rejected")
		return ErrConfirmRequired
	}
	err := s.container.MutateDoctors(ctx, func(doctors []domain.Doctor) ([]domain.Doctor, error) {
		for i, d := range doctors {
			if d.ID == id {
				return append(doctors[:i], doctors[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	if err != nil {
		s.metrics.ObserveMutation("delete_doctor", "rejected")
		return err
	}
	s.metrics.ObserveMutation("delete_doctor", "ok")
	s.logger.Info("doctor deleted", "doctor_id", id)
	return nil
}

// AddSpecialty appends a new catalog entry. Empty names and exact duplicates
// are no-ops, not errors.
func (s *Service) AddSpecialty(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	added := false
	err := s.container.MutateSpecialties(ctx, func(specialties []domain.Specialty) ([]domain.Specialty, error) {
		for _, existing := range specialties {
			if existing == name {
				return specialties, nil
			}
		}
		added = true
		return append(specialties, name), nil
	})
	if err != nil {
		return err
	}
	if added {
		s.metrics.ObserveMutation("add_specialty", "ok")
		s.logger.Info("specialty added", "specialty", name)
	}
	return nil
}

// RemoveSpecialty drops every catalog entry equal to name. Doctors tagged
// with the removed specialty are left untouched.
func (s *Service) RemoveSpecialty(ctx context.Context, name string) error {
	err := s.container.MutateSpecialties(ctx, func(specialties []domain.Specialty) ([]domain.Specialty, error) {
		out := specialties[:0]
		for _, existing := range specialties {
			if existing != name {
				out = append(out, existing)
			}
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	s.metrics.ObserveMutation("remove_specialty", "ok")
	s.logger.Info("specialty removed", "specialty", name)
	return nil
}

// UpdateSettings merges patch into the settings singleton.
func (s *Service) UpdateSettings(ctx context.Context, patch SettingsPatch) (domain.AppSettings, error) {
	var updated domain.AppSettings
	err := s.container.MutateSettings(ctx, func(settings domain.AppSettings) (domain.AppSettings, error) {
		if patch.AppName != nil {
			settings.AppName = *patch.AppName
		}
		if patch.AppIcon != nil {
			settings.AppIcon = *patch.AppIcon
		}
		updated = settings
		return settings, nil
	})
	if err != nil {
		return domain.AppSettings{}, err
	}
	s.metrics.ObserveMutation("update_settings", "ok")
	s.logger.Info("settings updated", "app_name", updated.AppName)
	return updated, nil
}

// ParseAvailability splits a comma-separated slot string, trimming whitespace
// and dropping empty segments. Order is preserved and duplicates are kept.
func ParseAvailability(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func placeholderImage(id string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/200/200", id)
}
