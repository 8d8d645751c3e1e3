package services

import "errors"

// Sentinel errors the handlers translate into HTTP statuses. Persistence
// failures are wrapped instead, so internal detail never reaches a response.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidDoctor      = errors.New("doctor does not exist")
	ErrInvalidCode        = errors.New("collection code must be 6 digits")
	ErrEmailTaken         = errors.New("email already registered")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrCreationFailed     = errors.New("creation failed")
)
