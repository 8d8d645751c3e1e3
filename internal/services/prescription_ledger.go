package services

import (
	"crypto/subtle"
	"fmt"
	"time"

	"medilink-server/internal/models"
)

// RedeemOutcome is the result of a redemption attempt.
type RedeemOutcome int

const (
	// RedeemNoMatch covers both "no such prescription for this pharmacy"
	// and "wrong collection code"; the caller cannot tell them apart and
	// must treat both as not redeemed.
	RedeemNoMatch RedeemOutcome = iota
	// Redeemed: a temporary prescription was collected and deleted.
	Redeemed
	// CodeRotated: a recurring prescription was collected and its
	// collection code replaced.
	CodeRotated
)

// String returns the status string the route layer reports.
func (o RedeemOutcome) String() string {
	switch o {
	case Redeemed:
		return "deleted"
	case CodeRotated:
		return "code changed"
	}
	return "not redeemed"
}

// PrescriptionLedger owns prescription records and the collection-code
// redemption state machine.
type PrescriptionLedger struct {
	store LedgerStore
}

// NewPrescriptionLedger creates a new PrescriptionLedger.
func NewPrescriptionLedger(store LedgerStore) *PrescriptionLedger {
	return &PrescriptionLedger{store: store}
}

// Fetch returns the prescription redacted for the caller's role. The row
// must be tied to the caller through their own role column.
func (s *PrescriptionLedger) Fetch(userID string, role models.Role, prescriptionID string) (models.PrescriptionView, error) {
	switch role {
	case models.RolePatient, models.RoleDoctor, models.RolePharmacist:
	default:
		return models.PrescriptionView{}, ErrInvalidRole
	}
	p, err := s.store.FindPrescriptionForRole(prescriptionID, role, userID)
	if err != nil {
		return models.PrescriptionView{}, fmt.Errorf("prescription lookup: %w", err)
	}
	if p == nil {
		return models.PrescriptionView{}, ErrNotFound
	}
	return p.View(role), nil
}

// List returns every prescription tied to the caller, each redacted for the
// caller's role.
func (s *PrescriptionLedger) List(userID string, role models.Role) ([]models.PrescriptionView, error) {
	switch role {
	case models.RolePatient, models.RoleDoctor, models.RolePharmacist:
	default:
		return nil, ErrInvalidRole
	}
	prescriptions, err := s.store.ListPrescriptionsForRole(role, userID)
	if err != nil {
		return nil, fmt.Errorf("prescription list: %w", err)
	}
	views := make([]models.PrescriptionView, len(prescriptions))
	for i := range prescriptions {
		views[i] = prescriptions[i].View(role)
	}
	return views, nil
}

// CreateInput carries a new prescription. PrescriptionID and CollectionCode
// are generated when absent.
type CreateInput struct {
	PrescriptionID string
	PatientID      string
	DoctorID       string
	PharmacyID     string
	MedicineName   string
	Instructions   string
	DatePrescribed time.Time
	DurationType   string
	CollectionCode string
}

// Create inserts one ledger row. Constraint violations (duplicate ID,
// missing foreign keys) surface as a generic creation failure.
func (s *PrescriptionLedger) Create(in CreateInput) (models.Prescription, error) {
	id := in.PrescriptionID
	if id == "" {
		seq, err := s.store.NextPrescriptionSequence()
		if err != nil {
			return models.Prescription{}, fmt.Errorf("sequence lookup: %w", err)
		}
		id = models.FormatID(models.NewIDPrefix(), seq+1)
	}

	code := in.CollectionCode
	if code == "" {
		code = models.NewCollectionCode()
	} else if !models.ValidCollectionCode(code) {
		return models.Prescription{}, ErrInvalidCode
	}

	p := models.Prescription{
		ID:             id,
		PatientID:      in.PatientID,
		DoctorID:       in.DoctorID,
		PharmacyID:     in.PharmacyID,
		MedicineName:   in.MedicineName,
		Instructions:   in.Instructions,
		DatePrescribed: in.DatePrescribed,
		DurationType:   in.DurationType,
		CollectionCode: code,
	}
	if err := s.store.CreatePrescription(&p); err != nil {
		return models.Prescription{}, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}
	return p, nil
}

// Redeem runs the collection-code state machine inside one transaction, so
// concurrent attempts against the same prescription serialize and at most
// one succeeds:
//
//	no row / wrong code       -> no-op
//	code match and temporary  -> row deleted, collected for good
//	code match and recurring  -> code rotated for the next visit
func (s *PrescriptionLedger) Redeem(prescriptionID, pharmacyID, suppliedCode string) (RedeemOutcome, error) {
	outcome := RedeemNoMatch
	err := s.store.Transact(func(tx LedgerTx) error {
		p, err := tx.LockForRedemption(prescriptionID, pharmacyID)
		if err != nil {
			return err
		}
		if p == nil || !codesEqual(p.CollectionCode, suppliedCode) {
			return nil
		}

		if p.DurationType == models.DurationTemporary {
			if err := tx.Delete(p); err != nil {
				return err
			}
			outcome = Redeemed
			return nil
		}

		next := models.NewCollectionCode()
		for next == p.CollectionCode {
			next = models.NewCollectionCode()
		}
		if err := tx.UpdateCollectionCode(p, next); err != nil {
			return err
		}
		outcome = CodeRotated
		return nil
	})
	if err != nil {
		return RedeemNoMatch, fmt.Errorf("redeem: %w", err)
	}
	return outcome, nil
}

func codesEqual(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
