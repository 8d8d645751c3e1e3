package services

import (
	"encoding/json"
	"fmt"

	"medilink-server/internal/models"
	"medilink-server/internal/utils"
)

// MessageVault stores and retrieves the encrypted doctor-patient message
// histories owned by enrollments.
type MessageVault struct {
	store  VaultStore
	cipher *utils.MessageCipher
}

// NewMessageVault creates a new MessageVault.
func NewMessageVault(store VaultStore, cipher *utils.MessageCipher) *MessageVault {
	return &MessageVault{store: store, cipher: cipher}
}

// IsEnrolled exposes the enrollment gate for callers authorizing doctor
// access.
func (v *MessageVault) IsEnrolled(doctorID, patientID string) (bool, error) {
	return v.store.IsEnrolled(doctorID, patientID)
}

// History returns every message across the patient's enrollments, in stored
// order per enrollment with enrollments ordered by doctor ID. Each entry is
// decrypted independently; an entry that fails to decrypt passes through
// unchanged rather than failing the whole read.
func (v *MessageVault) History(patientID string) ([]models.Message, error) {
	enrollments, err := v.store.EnrollmentsForPatient(patientID)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	messages := []models.Message{}
	for _, e := range enrollments {
		for _, msg := range decodeHistory(e.MsgHistory) {
			if plain, err := v.cipher.Decrypt(msg.Body); err == nil {
				msg.Body = plain
			}
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

// Append encrypts plaintext and appends it to the (doctorID, patientID)
// enrollment's history. When doctorID is empty the patient's first
// enrollment in doctor-ID order receives the message. Returns the number of
// enrollment rows written; 0 means no matching enrollment exists.
func (v *MessageVault) Append(patientID, doctorID, senderID, plaintext, timestamp string) (int64, error) {
	enrollments, err := v.store.EnrollmentsForPatient(patientID)
	if err != nil {
		return 0, fmt.Errorf("load enrollments: %w", err)
	}

	var target *models.Enrollment
	for i := range enrollments {
		if doctorID == "" || enrollments[i].DoctorID == doctorID {
			target = &enrollments[i]
			break
		}
	}
	if target == nil {
		return 0, nil
	}

	ciphertext, err := v.cipher.Encrypt(plaintext)
	if err != nil {
		return 0, fmt.Errorf("encrypt message: %w", err)
	}

	history := decodeHistory(target.MsgHistory)
	history = append(history, models.Message{
		Sender:    senderID,
		Body:      ciphertext,
		Timestamp: timestamp,
	})
	raw, err := json.Marshal(history)
	if err != nil {
		return 0, fmt.Errorf("serialize history: %w", err)
	}

	rows, err := v.store.SaveMessageHistory(target.DoctorID, patientID, string(raw))
	if err != nil {
		return 0, fmt.Errorf("save history: %w", err)
	}
	return rows, nil
}

// decodeHistory tolerates empty, null and malformed history blobs, returning
// an empty slice for all of them.
func decodeHistory(raw string) []models.Message {
	if raw == "" {
		return nil
	}
	var messages []models.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil
	}
	return messages
}
