package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medilink-server/internal/models"
)

func seedProfiles(store *fakeStore) {
	store.addAccount(models.Account{
		ID: "BM00001", Role: models.RolePatient, Name: "Baku Madarame",
		Email: "patient@example.com", PasswordHash: "x",
	})
	store.addAccount(models.Account{
		ID: "GH00002", Role: models.RoleDoctor, Name: "Dr. Gregory House",
		Email: "doctor@example.com", PasswordHash: "x",
	})
	store.addAccount(models.Account{
		ID: "MC00001", Role: models.RolePharmacist, Name: "MediCare Pharmacy",
		Email: "pharmacy@example.com", PasswordHash: "x",
	})
	store.addEnrollment("GH00002", "BM00001", "[]")
}

func TestProfileService_VisibilityMatrix(t *testing.T) {
	store := newFakeStore()
	seedProfiles(store)
	svc := NewProfileService(store)

	// Doctor may view a patient; patient may view a doctor.
	acct, err := svc.Other(models.RoleDoctor, models.RolePatient, "BM00001")
	assert.NoError(t, err)
	assert.Equal(t, "BM00001", acct.ID)

	acct, err = svc.Other(models.RolePatient, models.RoleDoctor, "GH00002")
	assert.NoError(t, err)
	assert.Equal(t, "GH00002", acct.ID)

	// Every other combination is forbidden.
	forbidden := []struct{ viewer, target models.Role }{
		{models.RoleDoctor, models.RoleDoctor},
		{models.RolePatient, models.RolePatient},
		{models.RolePharmacist, models.RolePatient},
		{models.RolePharmacist, models.RoleDoctor},
		{models.RoleDoctor, models.RolePharmacist},
		{models.RolePatient, models.RolePharmacist},
	}
	for _, combo := range forbidden {
		_, err := svc.Other(combo.viewer, combo.target, "BM00001")
		assert.ErrorIs(t, err, ErrForbidden, "%s viewing %s", combo.viewer, combo.target)
	}
}

func TestProfileService_EmailFallbackLookup(t *testing.T) {
	store := newFakeStore()
	seedProfiles(store)
	svc := NewProfileService(store)

	acct, err := svc.Other(models.RoleDoctor, models.RolePatient, "patient@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "BM00001", acct.ID)

	_, err = svc.Other(models.RoleDoctor, models.RolePatient, "unknown@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileService_Self(t *testing.T) {
	store := newFakeStore()
	seedProfiles(store)
	svc := NewProfileService(store)

	acct, err := svc.Self(models.RolePharmacist, "MC00001")
	assert.NoError(t, err)
	assert.Equal(t, "MediCare Pharmacy", acct.Name)

	_, err = svc.Self(models.RolePharmacist, "MC99999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileService_UpdatePatientHistory(t *testing.T) {
	store := newFakeStore()
	seedProfiles(store)
	svc := NewProfileService(store)

	payload := map[string]any{"allergies": []string{"penicillin"}}
	updated, err := svc.UpdatePatientHistory("BM00001", payload)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	acct, err := store.FindAccountByKey(models.RolePatient, "BM00001")
	assert.NoError(t, err)
	assert.JSONEq(t, `{"allergies":["penicillin"]}`, acct.PatientHistory)

	_, err = svc.UpdatePatientHistory("XX00000", payload)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileService_EnrollmentListings(t *testing.T) {
	store := newFakeStore()
	seedProfiles(store)
	svc := NewProfileService(store)

	patients, err := svc.PatientsForDoctor("GH00002")
	assert.NoError(t, err)
	assert.Len(t, patients, 1)
	assert.Equal(t, "BM00001", patients[0].ID)

	doctors, err := svc.DoctorsForPatient("BM00001")
	assert.NoError(t, err)
	assert.Len(t, doctors, 1)
	assert.Equal(t, "GH00002", doctors[0].ID)
}
