package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medilink-server/internal/models"
	"medilink-server/internal/services"
)

// Compile-time checks that Store satisfies every service contract.
var (
	_ services.AuthStore    = (*Store)(nil)
	_ services.ProfileStore = (*Store)(nil)
	_ services.VaultStore   = (*Store)(nil)
	_ services.LedgerStore  = (*Store)(nil)
)

// Store is the gorm-backed persistence layer. One Store wraps one *gorm.DB;
// the engine hands each request its own connection and serializes writes.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an open database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// roleTable maps a role onto its credential table. This is the single place
// the role/table pairing exists.
func roleTable(role models.Role) (any, error) {
	switch role {
	case models.RolePatient:
		return &models.Patient{}, nil
	case models.RoleDoctor:
		return &models.Doctor{}, nil
	case models.RolePharmacist:
		return &models.Pharmacy{}, nil
	}
	return nil, fmt.Errorf("no table for role %q", role)
}

func toAccount(row any) *models.Account {
	switch r := row.(type) {
	case *models.Patient:
		return &models.Account{
			ID: r.ID, Role: models.RolePatient, Name: r.Name, Email: r.Email,
			PasswordHash: r.PasswordHash, PatientHistory: r.PatientHistory,
			DateOfBirth: r.DateOfBirth, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	case *models.Doctor:
		return &models.Account{
			ID: r.ID, Role: models.RoleDoctor, Name: r.Name, Email: r.Email,
			PasswordHash: r.PasswordHash, Specialisation: r.Specialisation,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	case *models.Pharmacy:
		return &models.Account{
			ID: r.ID, Role: models.RolePharmacist, Name: r.Name, Email: r.Email,
			PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	}
	return nil
}

func fromAccount(a *models.Account) (any, error) {
	switch a.Role {
	case models.RolePatient:
		return &models.Patient{
			ID: a.ID, Name: a.Name, Email: a.Email, PasswordHash: a.PasswordHash,
			PatientHistory: a.PatientHistory, DateOfBirth: a.DateOfBirth,
		}, nil
	case models.RoleDoctor:
		return &models.Doctor{
			ID: a.ID, Name: a.Name, Email: a.Email, PasswordHash: a.PasswordHash,
			Specialisation: a.Specialisation,
		}, nil
	case models.RolePharmacist:
		return &models.Pharmacy{
			ID: a.ID, Name: a.Name, Email: a.Email, PasswordHash: a.PasswordHash,
		}, nil
	}
	return nil, fmt.Errorf("no table for role %q", a.Role)
}

func (s *Store) findAccount(role models.Role, query string, args ...any) (*models.Account, error) {
	row, err := roleTable(role)
	if err != nil {
		return nil, err
	}
	if err := s.db.Where(query, args...).First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toAccount(row), nil
}

// FindAccountByEmail looks an account up in the role's own table.
func (s *Store) FindAccountByEmail(role models.Role, email string) (*models.Account, error) {
	return s.findAccount(role, "email = ?", email)
}

// FindAccountByKey resolves key first as the role-scoped ID and, when it
// looks like an email address, falls back to an email lookup.
func (s *Store) FindAccountByKey(role models.Role, key string) (*models.Account, error) {
	acct, err := s.findAccount(role, "id = ?", key)
	if err != nil {
		return nil, err
	}
	if acct == nil && strings.Contains(key, "@") {
		return s.FindAccountByEmail(role, key)
	}
	return acct, nil
}

// EmailExists reports whether the role's table already holds email.
func (s *Store) EmailExists(role models.Role, email string) (bool, error) {
	acct, err := s.FindAccountByEmail(role, email)
	if err != nil {
		return false, err
	}
	return acct != nil, nil
}

// DoctorExists reports whether doctorID resolves to a doctor row.
func (s *Store) DoctorExists(doctorID string) (bool, error) {
	acct, err := s.findAccount(models.RoleDoctor, "id = ?", doctorID)
	if err != nil {
		return false, err
	}
	return acct != nil, nil
}

// NextAccountSequence returns the highest counter already used under prefix
// in the role's table. The next free identifier is prefix + (result+1).
func (s *Store) NextAccountSequence(role models.Role, prefix string) (int, error) {
	row, err := roleTable(role)
	if err != nil {
		return 0, err
	}
	var ids []string
	if err := s.db.Model(row).Where("id LIKE ?", prefix+"%").Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	return maxSequence(ids, len(prefix)), nil
}

func maxSequence(ids []string, prefixLen int) int {
	max := 0
	for _, id := range ids {
		if len(id) <= prefixLen {
			continue
		}
		n, err := strconv.Atoi(id[prefixLen:])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

// CreateAccount inserts the account row and, for patients, the enrollment
// with the chosen doctor in the same transaction. Either both rows commit or
// neither does.
func (s *Store) CreateAccount(acct *models.Account, doctorID string) error {
	row, err := fromAccount(acct)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if acct.Role == models.RolePatient {
			enrollment := models.Enrollment{
				DoctorID:   doctorID,
				PatientID:  acct.ID,
				MsgHistory: "[]",
			}
			if err := tx.Create(&enrollment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdatePatientHistory overwrites the patient's history blob and reports how
// many rows matched.
func (s *Store) UpdatePatientHistory(patientID, history string) (int64, error) {
	res := s.db.Model(&models.Patient{}).Where("id = ?", patientID).
		Update("patient_history", history)
	return res.RowsAffected, res.Error
}

// IsEnrolled is the membership test on the doctor-patient relation.
func (s *Store) IsEnrolled(doctorID, patientID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Enrollment{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Count(&count).Error
	return count > 0, err
}

// EnrollmentsForPatient returns the patient's enrollments in doctor-ID order,
// so multi-doctor patients always resolve the same way.
func (s *Store) EnrollmentsForPatient(patientID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.db.Where("patient_id = ?", patientID).
		Order("doctor_id asc").Find(&enrollments).Error
	return enrollments, err
}

// SaveMessageHistory replaces one enrollment's serialized history.
func (s *Store) SaveMessageHistory(doctorID, patientID, history string) (int64, error) {
	res := s.db.Model(&models.Enrollment{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Update("msg_history", history)
	return res.RowsAffected, res.Error
}

// PatientsForDoctor lists the accounts of every patient enrolled with the
// doctor.
func (s *Store) PatientsForDoctor(doctorID string) ([]models.Account, error) {
	var patients []models.Patient
	err := s.db.
		Joins("JOIN enrollments ON enrollments.patient_id = patients.id").
		Where("enrollments.doctor_id = ?", doctorID).
		Order("patients.id asc").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	accounts := make([]models.Account, len(patients))
	for i := range patients {
		accounts[i] = *toAccount(&patients[i])
	}
	return accounts, nil
}

// DoctorsForPatient lists the accounts of every doctor the patient is
// enrolled with.
func (s *Store) DoctorsForPatient(patientID string) ([]models.Account, error) {
	var doctors []models.Doctor
	err := s.db.
		Joins("JOIN enrollments ON enrollments.doctor_id = doctors.id").
		Where("enrollments.patient_id = ?", patientID).
		Order("doctors.id asc").
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	accounts := make([]models.Account, len(doctors))
	for i := range doctors {
		accounts[i] = *toAccount(&doctors[i])
	}
	return accounts, nil
}

// prescriptionColumn maps a role onto the ledger column that ties rows to it.
func prescriptionColumn(role models.Role) (string, error) {
	switch role {
	case models.RolePatient:
		return "patient_id", nil
	case models.RoleDoctor:
		return "doctor_id", nil
	case models.RolePharmacist:
		return "pharmacy_id", nil
	}
	return "", fmt.Errorf("no prescription column for role %q", role)
}

// FindPrescriptionForRole fetches a prescription only when it is tied to the
// caller through the caller's own role column.
func (s *Store) FindPrescriptionForRole(prescriptionID string, role models.Role, userID string) (*models.Prescription, error) {
	column, err := prescriptionColumn(role)
	if err != nil {
		return nil, err
	}
	var p models.Prescription
	err = s.db.Where("prescription_id = ? AND "+column+" = ?", prescriptionID, userID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPrescriptionsForRole returns every prescription tied to the caller
// through their role column, in prescription-ID order.
func (s *Store) ListPrescriptionsForRole(role models.Role, userID string) ([]models.Prescription, error) {
	column, err := prescriptionColumn(role)
	if err != nil {
		return nil, err
	}
	var prescriptions []models.Prescription
	err = s.db.Where(column+" = ?", userID).
		Order("prescription_id asc").
		Find(&prescriptions).Error
	return prescriptions, err
}

// NextPrescriptionSequence returns the highest counter over all prescription
// IDs regardless of prefix; the prescription sequence is global.
func (s *Store) NextPrescriptionSequence() (int, error) {
	var ids []string
	if err := s.db.Model(&models.Prescription{}).Pluck("prescription_id", &ids).Error; err != nil {
		return 0, err
	}
	return maxSequence(ids, 2), nil
}

// CreatePrescription inserts one ledger row.
func (s *Store) CreatePrescription(p *models.Prescription) error {
	return s.db.Create(p).Error
}

// ledgerTx is the transactional view the redemption state machine runs in.
type ledgerTx struct {
	tx *gorm.DB
}

// LockForRedemption loads the row matching both IDs under a row lock, holding
// off concurrent redeemers until this transaction finishes.
func (l *ledgerTx) LockForRedemption(prescriptionID, pharmacyID string) (*models.Prescription, error) {
	var p models.Prescription
	err := l.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prescription_id = ? AND pharmacy_id = ?", prescriptionID, pharmacyID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a redeemed temporary prescription.
func (l *ledgerTx) Delete(p *models.Prescription) error {
	return l.tx.Delete(p).Error
}

// UpdateCollectionCode rotates the active collection code.
func (l *ledgerTx) UpdateCollectionCode(p *models.Prescription, code string) error {
	err := l.tx.Model(p).Update("collection_code", code).Error
	if err == nil {
		p.CollectionCode = code
	}
	return err
}

// Transact runs fn inside one database transaction.
func (s *Store) Transact(fn func(services.LedgerTx) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{tx: tx})
	})
}
