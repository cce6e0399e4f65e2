package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
)

func TestBuild(t *testing.T) {
	appointments := []model.Appointment{
		{PatientName: "Asha Rao", PatientPhone: "9000000001", PatientAge: "35", AppointmentDate: "2026-10-14"},
		{PatientName: "Ravi Kumar", PatientPhone: "9000000002", PatientAge: "50", AppointmentDate: "2026-10-12"},
		{PatientName: "Asha Rao", PatientPhone: "9000000001", PatientAge: "34", AppointmentDate: "2026-09-01"},
		{PatientName: "Asha Rao", PatientPhone: "9111111111", PatientAge: "60", AppointmentDate: "2026-08-20"},
	}

	patients := Build(appointments)

	require.Len(t, patients, 3)
	assert.Equal(t, "Asha Rao-9000000001", patients[0].ID)
	assert.Equal(t, "35", patients[0].Age, "most recent appointment wins")
	assert.Equal(t, "2026-10-14", patients[0].LastVisit)
	assert.Equal(t, "Ravi Kumar-9000000002", patients[1].ID)
	assert.Equal(t, "Asha Rao-9111111111", patients[2].ID, "same name with another phone is another patient")
}

func TestBuildEmpty(t *testing.T) {
	patients := Build(nil)
	assert.NotNil(t, patients)
	assert.Empty(t, patients)
}

func TestBuildKeyCollision(t *testing.T) {
	// "a-b" + "c" and "a" + "b-c" share a key; the first one seen is kept
	patients := Build([]model.Appointment{
		{PatientName: "a-b", PatientPhone: "c", PatientAge: "1"},
		{PatientName: "a", PatientPhone: "b-c", PatientAge: "2"},
	})

	require.Len(t, patients, 1)
	assert.Equal(t, "a-b", patients[0].Name)
}

func TestFind(t *testing.T) {
	patients := Build([]model.Appointment{
		{PatientName: "Asha Rao", PatientPhone: "9000000001"},
	})

	p, ok := Find(patients, Key("Asha Rao", "9000000001"))
	assert.True(t, ok)
	assert.Equal(t, "Asha Rao", p.Name)

	_, ok = Find(patients, "nobody-0")
	assert.False(t, ok)
}
