package services

import (
	"fmt"
	"time"

	"medilink-server/internal/models"
)

// AuthService verifies credentials and registers accounts in the
// role-partitioned credential store.
type AuthService struct {
	store AuthStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(store AuthStore) *AuthService {
	return &AuthService{store: store}
}

// Authenticate checks email and password against the role's table and
// returns the sanitized account. bcrypt keeps the comparison timing-safe.
func (s *AuthService) Authenticate(role models.Role, email, password string) (models.AccountSanitized, error) {
	acct, err := s.store.FindAccountByEmail(role, email)
	if err != nil {
		return models.AccountSanitized{}, fmt.Errorf("credential lookup: %w", err)
	}
	if acct == nil || !acct.CheckPassword(password) {
		return models.AccountSanitized{}, ErrInvalidCredentials
	}
	return acct.Sanitize(), nil
}

// RegisterInput carries the role-specific registration fields.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	DoctorID       string // patients: the doctor to enroll with
	DateOfBirth    *time.Time
	Specialisation string
}

// Register creates an account under a freshly generated role-scoped ID. A
// patient registration also creates the doctor enrollment; the store commits
// both rows together or neither.
func (s *AuthService) Register(role models.Role, in RegisterInput) (models.AccountSanitized, error) {
	taken, err := s.store.EmailExists(role, in.Email)
	if err != nil {
		return models.AccountSanitized{}, fmt.Errorf("email check: %w", err)
	}
	if taken {
		return models.AccountSanitized{}, ErrEmailTaken
	}

	if role == models.RolePatient {
		if in.DoctorID == "" {
			return models.AccountSanitized{}, ErrInvalidDoctor
		}
		exists, err := s.store.DoctorExists(in.DoctorID)
		if err != nil {
			return models.AccountSanitized{}, fmt.Errorf("doctor check: %w", err)
		}
		if !exists {
			return models.AccountSanitized{}, ErrInvalidDoctor
		}
	}

	prefix := models.NewIDPrefix()
	seq, err := s.store.NextAccountSequence(role, prefix)
	if err != nil {
		return models.AccountSanitized{}, fmt.Errorf("sequence lookup: %w", err)
	}

	acct := models.Account{
		ID:             models.FormatID(prefix, seq+1),
		Role:           role,
		Name:           in.Name,
		Email:          in.Email,
		Specialisation: in.Specialisation,
		DateOfBirth:    in.DateOfBirth,
	}
	if err := acct.SetPassword(in.Password); err != nil {
		return models.AccountSanitized{}, fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.CreateAccount(&acct, in.DoctorID); err != nil {
		return models.AccountSanitized{}, fmt.Errorf("registration failed: %w", err)
	}
	return acct.Sanitize(), nil
}
