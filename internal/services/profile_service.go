package services

import (
	"encoding/json"
	"fmt"

	"medilink-server/internal/models"
)

// ProfileService reads and updates per-role profile data under the
// cross-role visibility rule.
type ProfileService struct {
	store ProfileStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// Self returns the caller's own sanitized record.
func (s *ProfileService) Self(role models.Role, userID string) (models.AccountSanitized, error) {
	acct, err := s.store.FindAccountByKey(role, userID)
	if err != nil {
		return models.AccountSanitized{}, fmt.Errorf("profile lookup: %w", err)
	}
	if acct == nil {
		return models.AccountSanitized{}, ErrNotFound
	}
	return acct.Sanitize(), nil
}

// Other fetches another user's sanitized profile. Only doctor->patient and
// patient->doctor are visible; every other combination is forbidden. The key
// is the role-scoped ID, or an email address when it contains "@".
func (s *ProfileService) Other(viewerRole, targetRole models.Role, key string) (models.AccountSanitized, error) {
	allowed := (viewerRole == models.RoleDoctor && targetRole == models.RolePatient) ||
		(viewerRole == models.RolePatient && targetRole == models.RoleDoctor)
	if !allowed {
		return models.AccountSanitized{}, ErrForbidden
	}

	acct, err := s.store.FindAccountByKey(targetRole, key)
	if err != nil {
		return models.AccountSanitized{}, fmt.Errorf("profile lookup: %w", err)
	}
	if acct == nil {
		return models.AccountSanitized{}, ErrNotFound
	}
	return acct.Sanitize(), nil
}

// UpdatePatientHistory serializes the history payload to canonical JSON text
// and stores it on the patient row. The route restricts this to doctors.
//
// TODO: require the acting doctor to be enrolled with the patient before
// accepting the update.
func (s *ProfileService) UpdatePatientHistory(patientID string, history any) (int64, error) {
	canonical, err := json.Marshal(history)
	if err != nil {
		return 0, fmt.Errorf("serialize history: %w", err)
	}
	rows, err := s.store.UpdatePatientHistory(patientID, string(canonical))
	if err != nil {
		return 0, fmt.Errorf("update history: %w", err)
	}
	if rows == 0 {
		return 0, ErrNotFound
	}
	return rows, nil
}

// PatientsForDoctor lists the sanitized profiles of the doctor's enrolled
// patients.
func (s *ProfileService) PatientsForDoctor(doctorID string) ([]models.AccountSanitized, error) {
	accounts, err := s.store.PatientsForDoctor(doctorID)
	if err != nil {
		return nil, fmt.Errorf("patient list: %w", err)
	}
	return sanitizeAll(accounts), nil
}

// DoctorsForPatient lists the sanitized profiles of the doctors the patient
// is enrolled with.
func (s *ProfileService) DoctorsForPatient(patientID string) ([]models.AccountSanitized, error) {
	accounts, err := s.store.DoctorsForPatient(patientID)
	if err != nil {
		return nil, fmt.Errorf("doctor list: %w", err)
	}
	return sanitizeAll(accounts), nil
}

func sanitizeAll(accounts []models.Account) []models.AccountSanitized {
	sanitized := make([]models.AccountSanitized, len(accounts))
	for i := range accounts {
		sanitized[i] = accounts[i].Sanitize()
	}
	return sanitized
}
