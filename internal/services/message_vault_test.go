package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"medilink-server/internal/models"
	"medilink-server/internal/utils"
)

func newVault(t *testing.T, store *fakeStore) *MessageVault {
	t.Helper()
	cipher, err := utils.NewMessageCipher("0123456789abcdef0123456789abcdef")
	assert.NoError(t, err)
	return NewMessageVault(store, cipher)
}

func TestMessageVault_RoundTrip(t *testing.T) {
	store := newFakeStore()
	store.addEnrollment("GH00002", "BM00001", "[]")
	vault := newVault(t, store)

	rows, err := vault.Append("BM00001", "GH00002", "GH00002", "hello", "2024-05-01T10:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// The stored history holds ciphertext, not the plaintext.
	enrollments, _ := store.EnrollmentsForPatient("BM00001")
	assert.NotContains(t, enrollments[0].MsgHistory, "hello")

	history, err := vault.History("BM00001")
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Body)
	assert.Equal(t, "GH00002", history[0].Sender)
	assert.Equal(t, "2024-05-01T10:00:00Z", history[0].Timestamp)
}

func TestMessageVault_AppendOrderPreserved(t *testing.T) {
	store := newFakeStore()
	store.addEnrollment("GH00002", "BM00001", "[]")
	vault := newVault(t, store)

	for _, text := range []string{"first", "second", "third"} {
		_, err := vault.Append("BM00001", "GH00002", "BM00001", text, "t")
		assert.NoError(t, err)
	}

	history, err := vault.History("BM00001")
	assert.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Body)
	assert.Equal(t, "second", history[1].Body)
	assert.Equal(t, "third", history[2].Body)
}

func TestMessageVault_UndecryptableEntriesPassThrough(t *testing.T) {
	// A message already stored as plaintext (or corrupted) must come back
	// unchanged while the rest of the history still decrypts.
	store := newFakeStore()
	legacy, _ := json.Marshal([]models.Message{
		{Sender: "GH00002", Body: "stored as plaintext", Timestamp: "t0"},
	})
	store.addEnrollment("GH00002", "BM00001", string(legacy))
	vault := newVault(t, store)

	_, err := vault.Append("BM00001", "GH00002", "BM00001", "encrypted one", "t1")
	assert.NoError(t, err)

	history, err := vault.History("BM00001")
	assert.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, "stored as plaintext", history[0].Body)
	assert.Equal(t, "encrypted one", history[1].Body)
}

func TestMessageVault_MalformedHistoryTolerated(t *testing.T) {
	store := newFakeStore()
	store.addEnrollment("GH00002", "BM00001", "{not json")
	vault := newVault(t, store)

	history, err := vault.History("BM00001")
	assert.NoError(t, err)
	assert.Empty(t, history)

	// Appending starts a fresh history over the malformed blob.
	rows, err := vault.Append("BM00001", "GH00002", "BM00001", "hello", "t")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	history, err = vault.History("BM00001")
	assert.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMessageVault_NoEnrollment(t *testing.T) {
	store := newFakeStore()
	vault := newVault(t, store)

	rows, err := vault.Append("BM00001", "", "BM00001", "hello", "t")
	assert.NoError(t, err)
	assert.Zero(t, rows)

	history, err := vault.History("BM00001")
	assert.NoError(t, err)
	assert.Empty(t, history)
}

func TestMessageVault_MultiDoctorTargeting(t *testing.T) {
	store := newFakeStore()
	store.addEnrollment("ZZ00001", "BM00001", "[]")
	store.addEnrollment("AA00001", "BM00001", "[]")
	vault := newVault(t, store)

	// An explicit doctor targets that thread.
	_, err := vault.Append("BM00001", "ZZ00001", "BM00001", "for zz", "t")
	assert.NoError(t, err)

	// Without a doctor the first enrollment in doctor-ID order receives it.
	_, err = vault.Append("BM00001", "", "BM00001", "for aa", "t")
	assert.NoError(t, err)

	enrollments, _ := store.EnrollmentsForPatient("BM00001")
	assert.Equal(t, "AA00001", enrollments[0].DoctorID)
	assert.Contains(t, enrollments[0].MsgHistory, `"sender"`)

	// History concatenates across enrollments in doctor-ID order.
	history, err := vault.History("BM00001")
	assert.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, "for aa", history[0].Body)
	assert.Equal(t, "for zz", history[1].Body)
}
