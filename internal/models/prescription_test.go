package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func samplePrescription() Prescription {
	return Prescription{
		ID:             "RX00001",
		PatientID:      "BM00001",
		DoctorID:       "GH00002",
		PharmacyID:     "MC00001",
		MedicineName:   "Amoxicillin",
		Instructions:   "Twice daily with food",
		DatePrescribed: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		DurationType:   DurationTemporary,
		CollectionCode: "123456",
	}
}

func TestPrescriptionView_RedactsCodeForPatientAndDoctor(t *testing.T) {
	p := samplePrescription()

	for _, role := range []Role{RolePatient, RoleDoctor} {
		v := p.View(role)
		assert.Empty(t, v.CollectionCode, "role %s must not see the collection code", role)
		assert.Equal(t, "BM00001", v.PatientID)
		assert.Equal(t, "GH00002", v.DoctorID)
		assert.Equal(t, "Amoxicillin", v.MedicineName)
	}
}

func TestPrescriptionView_RedactsPartiesForPharmacist(t *testing.T) {
	p := samplePrescription()

	v := p.View(RolePharmacist)
	assert.Empty(t, v.PatientID, "pharmacist must not see the patient")
	assert.Empty(t, v.DoctorID, "pharmacist must not see the doctor")
	assert.Equal(t, "123456", v.CollectionCode)
	assert.Equal(t, "MC00001", v.PharmacyID)
}
