package state

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healpointhq/clinic-platform/internal/domain"
	"github.com/healpointhq/clinic-platform/internal/store"
	"github.com/healpointhq/clinic-platform/pkg/logging"
)

func newTestContainer(t *testing.T) (*Container, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := New(store.New(client, logging.New("error")))
	require.NoError(t, c.Load(context.Background()))
	return c, mr
}

func TestLoadHydratesSeeds(t *testing.T) {
	c, _ := newTestContainer(t)

	assert.Len(t, c.Doctors(), 2)
	assert.Len(t, c.Specialties(), 6)
	assert.Empty(t, c.Appointments())
	assert.Equal(t, "Akota Hospital", c.Settings().AppName)
}

func TestFilteredDoctors(t *testing.T) {
	c, _ := newTestContainer(t)
	require.NoError(t, c.MutateDoctors(context.Background(), func([]domain.Doctor) ([]domain.Doctor, error) {
		return []domain.Doctor{
			{ID: "1", Name: "Dr. Sarah Johnson", Specialty: "Cardiologist"},
			{ID: "2", Name: "Dr. Michael Smith", Specialty: "Dermatologist"},
			{ID: "3", Name: "Dr. Sara Lee", Specialty: "Cardiologist"},
		}, nil
	}))

	tests := []struct {
		name      string
		query     string
		specialty string
		wantIDs   []string
	}{
		{"no constraints", "", domain.AllSpecialties, []string{"1", "2", "3"}},
		{"case-insensitive substring", "sAr", domain.AllSpecialties, []string{"1", "3"}},
		{"specialty only", "", "Cardiologist", []string{"1", "3"}},
		{"both constraints", "johnson", "Cardiologist", []string{"1"}},
		{"specialty is exact and case-sensitive", "", "cardiologist", nil},
		{"no match", "zzz", domain.AllSpecialties, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.FilteredDoctors(tt.query, tt.specialty)
			var ids []string
			for _, d := range got {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMutationCommitsToStore(t *testing.T) {
	c, mr := newTestContainer(t)

	require.NoError(t, c.MutateSpecialties(context.Background(), func(s []domain.Specialty) ([]domain.Specialty, error) {
		return append(s, "Oncologist"), nil
	}))

	data, err := mr.Get("healpoint:specialties")
	require.NoError(t, err)
	assert.Contains(t, data, "Oncologist")
	assert.Len(t, c.Specialties(), 7)
}

func TestMutationErrorLeavesStateUntouched(t *testing.T) {
	c, _ := newTestContainer(t)
	before := c.Doctors()

	err := c.MutateDoctors(context.Background(), func([]domain.Doctor) ([]domain.Doctor, error) {
		return nil, errors.New("nope")
	})
	require.Error(t, err)
	assert.Equal(t, before, c.Doctors())
}

func TestSessionFilterDefaultsToAll(t *testing.T) {
	c, _ := newTestContainer(t)

	f := c.SessionFilter("unseen-session")
	assert.Equal(t, domain.AllSpecialties, f.Specialty)
	assert.Empty(t, f.Query)

	c.SetSessionFilter("sess-1", Filter{Query: "smith", Specialty: "Dermatologist"})
	assert.Equal(t, Filter{Query: "smith", Specialty: "Dermatologist"}, c.SessionFilter("sess-1"))

	// Empty specialty normalizes to the sentinel.
	c.SetSessionFilter("sess-2", Filter{Query: "x"})
	assert.Equal(t, domain.AllSpecialties, c.SessionFilter("sess-2").Specialty)
}

func TestDoctorByID(t *testing.T) {
	c, _ := newTestContainer(t)

	d, ok := c.DoctorByID("1")
	require.True(t, ok)
	assert.Equal(t, "Dr. Sarah Johnson", d.Name)

	_, ok = c.DoctorByID("ghost")
	assert.False(t, ok)
}
