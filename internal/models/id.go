package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Role-scoped identifiers look like "BM00001": a two-letter prefix followed
// by a 5-digit zero-padded counter scoped to that prefix.
var idPattern = regexp.MustCompile(`^[A-Z]{2}\d{5}$`)

// ValidID reports whether s has the two-letter/five-digit identifier shape.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

// NewIDPrefix returns two random uppercase letters.
func NewIDPrefix() string {
	letters := make([]byte, 2)
	for i := range letters {
		n, err := rand.Int(rand.Reader, big.NewInt(26))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		letters[i] = byte('A' + n.Int64())
	}
	return string(letters)
}

// FormatID builds an identifier from a prefix and a sequence number.
func FormatID(prefix string, seq int) string {
	return fmt.Sprintf("%s%05d", prefix, seq)
}

var codePattern = regexp.MustCompile(`^\d{6}$`)

// ValidCollectionCode reports whether s has the 6-digit collection-code
// shape.
func ValidCollectionCode(s string) bool {
	return codePattern.MatchString(s)
}

// NewCollectionCode returns a random 6-digit zero-padded collection code.
func NewCollectionCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
