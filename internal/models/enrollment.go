package models

import (
	"time"
)

// Enrollment is the doctor-patient relation created at patient registration.
// It owns the pair's message history: a JSON array of Message entries, stored
// encrypted and only ever appended to.
type Enrollment struct {
	DoctorID   string    `gorm:"primaryKey;size:12" json:"doctorId"`
	PatientID  string    `gorm:"primaryKey;size:12" json:"patientId"`
	MsgHistory string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`

	// Relations
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
}

// Message is one entry of an enrollment's history. Body holds hex-encoded
// ciphertext at rest and plaintext once decrypted for a response. Timestamp
// is caller-supplied and opaque; it is preserved verbatim.
type Message struct {
	Sender    string `json:"sender"`
	Body      string `json:"message"`
	Timestamp string `json:"timestamp"`
}
