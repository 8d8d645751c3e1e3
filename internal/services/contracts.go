package services

import (
	"medilink-server/internal/models"
)

// AuthStore is what the auth service needs from persistence. Lookups return
// (nil, nil) when no row matches.
type AuthStore interface {
	FindAccountByEmail(role models.Role, email string) (*models.Account, error)
	EmailExists(role models.Role, email string) (bool, error)
	DoctorExists(doctorID string) (bool, error)
	NextAccountSequence(role models.Role, prefix string) (int, error)
	// CreateAccount must insert the account row and, for patients, the
	// enrollment with doctorID atomically.
	CreateAccount(acct *models.Account, doctorID string) error
}

// ProfileStore backs the profile service.
type ProfileStore interface {
	FindAccountByKey(role models.Role, key string) (*models.Account, error)
	UpdatePatientHistory(patientID, history string) (int64, error)
	PatientsForDoctor(doctorID string) ([]models.Account, error)
	DoctorsForPatient(patientID string) ([]models.Account, error)
}

// VaultStore backs the message vault.
type VaultStore interface {
	IsEnrolled(doctorID, patientID string) (bool, error)
	EnrollmentsForPatient(patientID string) ([]models.Enrollment, error)
	SaveMessageHistory(doctorID, patientID, history string) (int64, error)
}

// LedgerTx is the transactional view Redeem runs its state machine in. The
// row returned by LockForRedemption stays locked until the transaction ends.
type LedgerTx interface {
	LockForRedemption(prescriptionID, pharmacyID string) (*models.Prescription, error)
	Delete(p *models.Prescription) error
	UpdateCollectionCode(p *models.Prescription, code string) error
}

// LedgerStore backs the prescription ledger.
type LedgerStore interface {
	FindPrescriptionForRole(prescriptionID string, role models.Role, userID string) (*models.Prescription, error)
	ListPrescriptionsForRole(role models.Role, userID string) ([]models.Prescription, error)
	NextPrescriptionSequence() (int, error)
	CreatePrescription(p *models.Prescription) error
	Transact(fn func(LedgerTx) error) error
}
