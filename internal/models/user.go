package models

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RolePatient    Role = "patient"
	RoleDoctor     Role = "doctor"
	RolePharmacist Role = "pharmacist"
)

// ParseRole converts a route segment into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RolePharmacist:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Patient represents a row in the patients table.
type Patient struct {
	ID             string     `gorm:"primaryKey;size:12" json:"patientId"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string     `gorm:"size:255;not null" json:"-"` // Never send the hash in JSON
	PatientHistory string     `gorm:"type:text" json:"patientHistory,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Relations (not always preloaded)
	Enrollments   []Enrollment   `gorm:"foreignKey:PatientID" json:"-"`
	Prescriptions []Prescription `gorm:"foreignKey:PatientID" json:"-"`
}

// Doctor represents a row in the doctors table.
type Doctor struct {
	ID             string    `gorm:"primaryKey;size:12" json:"doctorId"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	Specialisation string    `gorm:"size:255" json:"specialisation,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Enrollments   []Enrollment   `gorm:"foreignKey:DoctorID" json:"-"`
	Prescriptions []Prescription `gorm:"foreignKey:DoctorID" json:"-"`
}

// Pharmacy represents a row in the pharmacies table.
type Pharmacy struct {
	ID           string    `gorm:"primaryKey;size:12" json:"pharmacyId"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Prescriptions []Prescription `gorm:"foreignKey:PharmacyID" json:"-"`
}

// Account is the role-neutral view of a credential-store row. The storage
// layer maps it onto the role's own table, so services never branch on role
// more than once.
type Account struct {
	ID             string
	Role           Role
	Name           string
	Email          string
	PasswordHash   string
	Specialisation string     // doctors only
	PatientHistory string     // patients only
	DateOfBirth    *time.Time // patients only
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AccountSanitized represents the account data that is safe to send in API
// responses.
type AccountSanitized struct {
	ID             string          `json:"id"`
	Role           Role            `json:"role"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Specialisation string          `json:"specialisation,omitempty"`
	PatientHistory json.RawMessage `json:"patientHistory,omitempty"`
	DateOfBirth    *time.Time      `json:"dateOfBirth,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the account
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the account's hashed password
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}

// Sanitize creates an AccountSanitized from an Account, excluding sensitive data.
func (a *Account) Sanitize() AccountSanitized {
	s := AccountSanitized{
		ID:             a.ID,
		Role:           a.Role,
		Name:           a.Name,
		Email:          a.Email,
		Specialisation: a.Specialisation,
		DateOfBirth:    a.DateOfBirth,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.PatientHistory != "" {
		if json.Valid([]byte(a.PatientHistory)) {
			s.PatientHistory = json.RawMessage(a.PatientHistory)
		} else {
			raw, _ := json.Marshal(a.PatientHistory)
			s.PatientHistory = raw
		}
	}
	return s
}
