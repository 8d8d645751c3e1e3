package models

import (
	"time"
)

// DurationType values. Anything other than Temporary is treated as a
// recurring prescription whose collection code rotates on every redemption.
const (
	DurationTemporary = "Temporary"
	DurationLifetime  = "Lifetime"
)

// Prescription ties a patient, the issuing doctor and the dispensing pharmacy
// to one medicine. Exactly one collection code is active at any time.
type Prescription struct {
	ID             string    `gorm:"primaryKey;size:12;column:prescription_id" json:"prescriptionId"`
	PatientID      string    `gorm:"size:12;index;not null" json:"patientId"`
	DoctorID       string    `gorm:"size:12;index;not null" json:"doctorId"`
	PharmacyID     string    `gorm:"size:12;index;not null" json:"pharmacyId"`
	MedicineName   string    `gorm:"size:255;not null" json:"medicineName"`
	Instructions   string    `gorm:"type:text" json:"instructions,omitempty"`
	DatePrescribed time.Time `json:"datePrescribed"`
	DurationType   string    `gorm:"size:20;not null" json:"durationType"`
	CollectionCode string    `gorm:"size:6;not null" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PrescriptionView is a prescription as one role is allowed to see it.
// Patients and doctors never see the collection code; pharmacists never see
// who the prescription belongs to or who issued it.
type PrescriptionView struct {
	PrescriptionID string    `json:"prescriptionId"`
	PatientID      string    `json:"patientId,omitempty"`
	DoctorID       string    `json:"doctorId,omitempty"`
	PharmacyID     string    `json:"pharmacyId"`
	MedicineName   string    `json:"medicineName"`
	Instructions   string    `json:"instructions,omitempty"`
	DatePrescribed time.Time `json:"datePrescribed"`
	DurationType   string    `json:"durationType"`
	CollectionCode string    `json:"collectionCode,omitempty"`
}

// View redacts the prescription for the given role.
func (p *Prescription) View(role Role) PrescriptionView {
	v := PrescriptionView{
		PrescriptionID: p.ID,
		PharmacyID:     p.PharmacyID,
		MedicineName:   p.MedicineName,
		Instructions:   p.Instructions,
		DatePrescribed: p.DatePrescribed,
		DurationType:   p.DurationType,
	}
	switch role {
	case RolePharmacist:
		v.CollectionCode = p.CollectionCode
	default:
		v.PatientID = p.PatientID
		v.DoctorID = p.DoctorID
	}
	return v
}
