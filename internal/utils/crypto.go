package utils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// legacyIV is the fixed IV the original seed tooling encrypted sample
// messages with. Decryption falls back to it so seeded rows stay readable;
// new ciphertexts always carry their own random IV.
var legacyIV = []byte("abcdef0123456789")

// MessageCipher encrypts and decrypts message-vault entries with AES-256-CBC
// and PKCS#7 padding. Each ciphertext is hex(iv || encrypted blocks).
type MessageCipher struct {
	key []byte
}

// NewMessageCipher creates a cipher from a raw 32-byte key.
func NewMessageCipher(key string) (*MessageCipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("message key must be 32 bytes, got %d", len(key))
	}
	return &MessageCipher{key: []byte(key)}, nil
}

// Encrypt returns the hex-encoded ciphertext of plaintext under a fresh
// random IV.
func (m *MessageCipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(m.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to draw IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Ciphertexts produced before IVs were embedded
// are retried under the legacy fixed IV.
func (m *MessageCipher) Decrypt(ciphertextHex string) (string, error) {
	data, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("malformed hex: %w", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a block multiple", len(data))
	}

	block, err := aes.NewCipher(m.key)
	if err != nil {
		return "", err
	}

	if len(data) >= 2*aes.BlockSize {
		if plain, err := decryptCBC(block, data[:aes.BlockSize], data[aes.BlockSize:]); err == nil {
			return plain, nil
		}
	}
	return decryptCBC(block, legacyIV, data)
}

func decryptCBC(block cipher.Block, iv, body []byte) (string, error) {
	out := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)
	unpadded, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-n], nil
}
