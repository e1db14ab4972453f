// Package domain defines the clinic's core records: doctors, specialties,
// appointments, and application settings.
package domain

import (
	"errors"
	"fmt"
)

// AllSpecialties is the filter sentinel meaning "no specialty constraint".
const AllSpecialties = "All Specialties"

// AppointmentStatus enumerates appointment lifecycle states. The booking
// workflow only ever produces StatusConfirmed; Pending and Cancelled are
// reserved for future workflow transitions.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Specialty is a catalog entry and the literal value stored on
// Doctor.Specialty. Matching is case-sensitive and exact; removing a
// specialty from the catalog does not touch doctors still tagged with it.
type Specialty = string

// Doctor is one roster entry. Availability is an ordered list of slot labels
// such as "10:00 AM"; it may be empty and carries no uniqueness or ordering
// guarantee beyond insertion order.
type Doctor struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Specialty    string   `json:"specialty"`
	Image        string   `json:"image"`
	Availability []string `json:"availability"`
}

// Appointment is one booking log entry. DoctorName is a snapshot taken at
// booking time and drifts if the doctor is later renamed or deleted.
type Appointment struct {
	ID            string            `json:"id"`
	DoctorID      string            `json:"doctorId"`
	DoctorName    string            `json:"doctorName"`
	PatientName   string            `json:"patientName"`
	ContactNumber string            `json:"contactNumber"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	Status        AppointmentStatus `json:"status"`
}

// AppSettings is the singleton branding record. AppIcon is an icon class
// interpreted by the presentation layer and is not validated here.
type AppSettings struct {
	AppName string `json:"appName"`
	AppIcon string `json:"appIcon"`
}

// ErrInvalidRecord marks a stored record that fails shape validation.
var ErrInvalidRecord = errors.New("domain: invalid record")

// Validate checks the fields a doctor record cannot live without.
func (d Doctor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: doctor missing id", ErrInvalidRecord)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: doctor %s missing name", ErrInvalidRecord, d.ID)
	}
	return nil
}

// Validate checks required appointment fields and that the status is one of
// the declared values.
func (a Appointment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: appointment missing id", ErrInvalidRecord)
	}
	if a.DoctorID == "" {
		return fmt.Errorf("%w: appointment %s missing doctor id", ErrInvalidRecord, a.ID)
	}
	if a.PatientName == "" {
		return fmt.Errorf("%w: appointment %s missing patient name", ErrInvalidRecord, a.ID)
	}
	switch a.Status {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return nil
	default:
		return fmt.Errorf("%w: appointment %s has unknown status %q", ErrInvalidRecord, a.ID, a.Status)
	}
}

// Validate ensures the settings singleton is fully populated.
func (s AppSettings) Validate() error {
	if s.AppName == "" || s.AppIcon == "" {
		return fmt.Errorf("%w: settings missing app name or icon", ErrInvalidRecord)
	}
	return nil
}
