package domain

// SeedDoctors returns the roster a fresh install starts with.
func SeedDoctors() []Doctor {
	return []Doctor{
		{
			ID:           "1",
			Name:         "Dr. Sarah Johnson",
			Specialty:    "Cardiologist",
			Image:        "https://picsum.photos/seed/sarah/200/200",
			Availability: []string{"10:00 AM", "11:30 AM", "2:00 PM"},
		},
		{
			ID:           "2",
			Name:         "Dr. Michael Smith",
			Specialty:    "Dermatologist",
			Image:        "https://picsum.photos/seed/michael/200/200",
			Availability: []string{"9:00 AM", "12:00 PM"},
		},
	}
}

// DefaultSpecialties returns the initial specialty catalog. The same six
// entries are offered to the triage assistant as candidate suggestions.
func DefaultSpecialties() []Specialty {
	return []Specialty{
		"Cardiologist",
		"Dermatologist",
		"Pediatrician",
		"Orthopedic Surgeon",
		"Neurologist",
		"General Physician",
	}
}

// DefaultSettings returns the branding record used until an admin edits it.
func DefaultSettings() AppSettings {
	return AppSettings{
		AppName: "Akota Hospital",
		AppIcon: "fa-house-medical",
	}
}
