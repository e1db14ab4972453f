// Package store persists the four clinic records (doctors, appointments,
// specialties, settings) as whole JSON documents in Redis. Each save replaces
// the full record; there are no incremental patches.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/healpointhq/clinic-platform/internal/domain"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("healpoint.internal.store")

// Record kinds map one-to-one onto Redis keys.
const (
	keyDoctors      = "healpoint:doctors"
	keyAppointments = "healpoint:appointments"
	keySpecialties  = "healpoint:specialties"
	keySettings     = "healpoint:settings"
)

// ErrCorruptRecord marks a stored document that fails to decode or validate.
var ErrCorruptRecord = errors.New("store: corrupt record")

// Store reads and writes the clinic's persisted records.
type Store struct {
	redis  *redis.Client
	logger *logging.Logger
}

// New creates a store backed by the given Redis client.
func New(redisClient *redis.Client, logger *logging.Logger) *Store {
	if redisClient == nil {
		panic("store: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{redis: redisClient, logger: logger}
}

// LoadDoctors returns the roster, seeding and persisting the initial pair on
// first access.
func (s *Store) LoadDoctors(ctx context.Context) ([]domain.Doctor, error) {
	ctx, span := tracer.Start(ctx, "store.load_doctors")
	defer span.End()

	data, err := s.redis.Get(ctx, keyDoctors).Bytes()
	if err == redis.Nil {
		seed := domain.SeedDoctors()
		s.SaveDoctors(ctx, seed)
		return seed, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store: load doctors: %w", err)
	}

	var doctors []domain.Doctor
	if err := json.Unmarshal(data, &doctors); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: doctors: %v", ErrCorruptRecord, err)
	}
	for _, d := range doctors {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: doctors: %v", ErrCorruptRecord, err)
		}
	}
	return doctors, nil
}

// SaveDoctors replaces the persisted roster. Persistence is best effort: a
// rejected write is logged and in-memory state stays authoritative for the
// session.
func (s *Store) SaveDoctors(ctx context.Context, doctors []domain.Doctor) {
	s.save(ctx, "store.save_doctors", keyDoctors, doctors)
}

// LoadAppointments returns the booking log, most recent first. An absent key
// is an empty log; no seeding write is issued.
func (s *Store) LoadAppointments(ctx context.Context) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "store.load_appointments")
	defer span.End()

	data, err := s.redis.Get(ctx, keyAppointments).Bytes()
	if err == redis.Nil {
		return []domain.Appointment{}, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store: load appointments: %w", err)
	}

	var appointments []domain.Appointment
	if err := json.Unmarshal(data, &appointments); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: appointments: %v", ErrCorruptRecord, err)
	}
	for _, a := range appointments {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%w: appointments: %v", ErrCorruptRecord, err)
		}
	}
	return appointments, nil
}

// SaveAppointments replaces the persisted booking log.
func (s *Store) SaveAppointments(ctx context.Context, appointments []domain.Appointment) {
	s.save(ctx, "store.save_appointments", keyAppointments, appointments)
}

// LoadSpecialties returns the specialty catalog, seeding the six defaults on
// first access.
func (s *Store) LoadSpecialties(ctx context.Context) ([]domain.Specialty, error) {
	ctx, span := tracer.Start(ctx, "store.load_specialties")
	defer span.End()

	data, err := s.redis.Get(ctx, keySpecialties).Bytes()
	if err == redis.Nil {
		seed := domain.DefaultSpecialties()
		s.SaveSpecialties(ctx, seed)
		return seed, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store: load specialties: %w", err)
	}

	var specialties []domain.Specialty
	if err := json.Unmarshal(data, &specialties); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: specialties: %v", ErrCorruptRecord, err)
	}
	return specialties, nil
}

// SaveSpecialties replaces the persisted catalog.
func (s *Store) SaveSpecialties(ctx context.Context, specialties []domain.Specialty) {
	s.save(ctx, "store.save_specialties", keySpecialties, specialties)
}

// LoadSettings returns the branding record, seeding defaults on first access.
func (s *Store) LoadSettings(ctx context.Context) (domain.AppSettings, error) {
	ctx, span := tracer.Start(ctx, "store.load_settings")
	defer span.End()

	data, err := s.redis.Get(ctx, keySettings).Bytes()
	if err == redis.Nil {
		seed := domain.DefaultSettings()
		s.SaveSettings(ctx, seed)
		return seed, nil
	}
	if err != nil {
		span.RecordError(err)
		return domain.AppSettings{}, fmt.Errorf("store: load settings: %w", err)
	}

	var settings domain.AppSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		span.RecordError(err)
		return domain.AppSettings{}, fmt.Errorf("%w: settings: %v", ErrCorruptRecord, err)
	}
	if err := settings.Validate(); err != nil {
		return domain.AppSettings{}, fmt.Errorf("%w: settings: %v", ErrCorruptRecord, err)
	}
	return settings, nil
}

// SaveSettings replaces the persisted branding record.
func (s *Store) SaveSettings(ctx context.Context, settings domain.AppSettings) {
	s.save(ctx, "store.save_settings", keySettings, settings)
}

func (s *Store) save(ctx context.Context, spanName, key string, value any) {
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("store: marshal record", "key", key, "error", err)
		return
	}
	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		span.RecordError(err)
		s.logger.Error("store: persist record", "key", key, "error", err)
	}
}
