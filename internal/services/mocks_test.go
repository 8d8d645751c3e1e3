package services

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"medilink-server/internal/models"
)

// Compile-time checks that the fake store satisfies every contract.
var (
	_ AuthStore    = (*fakeStore)(nil)
	_ ProfileStore = (*fakeStore)(nil)
	_ VaultStore   = (*fakeStore)(nil)
	_ LedgerStore  = (*fakeStore)(nil)
)

// fakeStore is an in-memory stand-in for the gorm store. Transact holds the
// mutex for the whole callback, modeling the row lock the real store takes.
type fakeStore struct {
	mu            sync.Mutex
	accounts      map[models.Role][]*models.Account
	enrollments   []*models.Enrollment
	prescriptions map[string]*models.Prescription

	failCreateAccount bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:      map[models.Role][]*models.Account{},
		prescriptions: map[string]*models.Prescription{},
	}
}

func (s *fakeStore) addAccount(a models.Account) *models.Account {
	cp := a
	s.accounts[a.Role] = append(s.accounts[a.Role], &cp)
	return &cp
}

func (s *fakeStore) addEnrollment(doctorID, patientID, history string) {
	s.enrollments = append(s.enrollments, &models.Enrollment{
		DoctorID: doctorID, PatientID: patientID, MsgHistory: history,
	})
}

func (s *fakeStore) addPrescription(p models.Prescription) {
	cp := p
	s.prescriptions[p.ID] = &cp
}

func (s *fakeStore) FindAccountByEmail(role models.Role, email string) (*models.Account, error) {
	for _, a := range s.accounts[role] {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindAccountByKey(role models.Role, key string) (*models.Account, error) {
	for _, a := range s.accounts[role] {
		if a.ID == key {
			cp := *a
			return &cp, nil
		}
	}
	if strings.Contains(key, "@") {
		return s.FindAccountByEmail(role, key)
	}
	return nil, nil
}

func (s *fakeStore) EmailExists(role models.Role, email string) (bool, error) {
	a, err := s.FindAccountByEmail(role, email)
	return a != nil, err
}

func (s *fakeStore) DoctorExists(doctorID string) (bool, error) {
	a, err := s.FindAccountByKey(models.RoleDoctor, doctorID)
	return a != nil, err
}

func (s *fakeStore) NextAccountSequence(role models.Role, prefix string) (int, error) {
	max := 0
	for _, a := range s.accounts[role] {
		if !strings.HasPrefix(a.ID, prefix) {
			continue
		}
		if n, err := strconv.Atoi(a.ID[len(prefix):]); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (s *fakeStore) CreateAccount(acct *models.Account, doctorID string) error {
	if s.failCreateAccount {
		return errors.New("constraint violation")
	}
	s.addAccount(*acct)
	if acct.Role == models.RolePatient {
		s.addEnrollment(doctorID, acct.ID, "[]")
	}
	return nil
}

func (s *fakeStore) UpdatePatientHistory(patientID, history string) (int64, error) {
	for _, a := range s.accounts[models.RolePatient] {
		if a.ID == patientID {
			a.PatientHistory = history
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeStore) PatientsForDoctor(doctorID string) ([]models.Account, error) {
	var out []models.Account
	for _, e := range s.enrollments {
		if e.DoctorID != doctorID {
			continue
		}
		if a, _ := s.FindAccountByKey(models.RolePatient, e.PatientID); a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) DoctorsForPatient(patientID string) ([]models.Account, error) {
	var out []models.Account
	for _, e := range s.enrollments {
		if e.PatientID != patientID {
			continue
		}
		if a, _ := s.FindAccountByKey(models.RoleDoctor, e.DoctorID); a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) IsEnrolled(doctorID, patientID string) (bool, error) {
	for _, e := range s.enrollments {
		if e.DoctorID == doctorID && e.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) EnrollmentsForPatient(patientID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range s.enrollments {
		if e.PatientID == patientID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoctorID < out[j].DoctorID })
	return out, nil
}

func (s *fakeStore) SaveMessageHistory(doctorID, patientID, history string) (int64, error) {
	for _, e := range s.enrollments {
		if e.DoctorID == doctorID && e.PatientID == patientID {
			e.MsgHistory = history
			return 1, nil
		}
	}
	return 0, nil
}

func (s *fakeStore) FindPrescriptionForRole(prescriptionID string, role models.Role, userID string) (*models.Prescription, error) {
	p, ok := s.prescriptions[prescriptionID]
	if !ok {
		return nil, nil
	}
	var owner string
	switch role {
	case models.RolePatient:
		owner = p.PatientID
	case models.RoleDoctor:
		owner = p.DoctorID
	case models.RolePharmacist:
		owner = p.PharmacyID
	}
	if owner != userID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) ListPrescriptionsForRole(role models.Role, userID string) ([]models.Prescription, error) {
	var out []models.Prescription
	for id := range s.prescriptions {
		if p, _ := s.FindPrescriptionForRole(id, role, userID); p != nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) NextPrescriptionSequence() (int, error) {
	max := 0
	for id := range s.prescriptions {
		if len(id) <= 2 {
			continue
		}
		if n, err := strconv.Atoi(id[2:]); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (s *fakeStore) CreatePrescription(p *models.Prescription) error {
	if _, exists := s.prescriptions[p.ID]; exists {
		return errors.New("duplicate prescription id")
	}
	s.addPrescription(*p)
	return nil
}

type fakeLedgerTx struct {
	s *fakeStore
}

func (t *fakeLedgerTx) LockForRedemption(prescriptionID, pharmacyID string) (*models.Prescription, error) {
	p, ok := t.s.prescriptions[prescriptionID]
	if !ok || p.PharmacyID != pharmacyID {
		return nil, nil
	}
	return p, nil
}

func (t *fakeLedgerTx) Delete(p *models.Prescription) error {
	delete(t.s.prescriptions, p.ID)
	return nil
}

func (t *fakeLedgerTx) UpdateCollectionCode(p *models.Prescription, code string) error {
	p.CollectionCode = code
	return nil
}

func (s *fakeStore) Transact(fn func(LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&fakeLedgerTx{s: s})
}
