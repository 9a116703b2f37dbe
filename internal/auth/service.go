// Package auth implements the credential service: the password policy,
// the password digest, session tokens and the register/authenticate
// operations. It owns no persistence; stores plug in via UserStore.
package auth

import (
	"database/sql"
	"errors"
	"strings"

	"budgetwise/internal/models"
)

// UserStore is the persistence surface the credential service needs.
// CreateUser must return ErrDuplicateEmail when the email is taken;
// GetUserByCredentials must return sql.ErrNoRows when no user matches.
type UserStore interface {
	CreateUser(name, email, username, passwordHash string) (*models.User, error)
	GetUserByCredentials(email, passwordHash string) (*models.User, error)
}

// Service validates and stores account credentials and verifies
// login attempts.
type Service struct {
	store UserStore
}

// NewService creates a credential service backed by the given store.
func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// Register validates the signup input, hashes the password and creates
// the user. The email is lower-cased and the username is derived from
// its local part. The returned user carries everything a caller needs
// to establish a session immediately.
func (s *Service) Register(name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, &Error{Kind: KindValidation, Message: "All fields required"}
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	return s.store.CreateUser(name, email, Username(email), HashPassword(password))
}

// Authenticate verifies a login attempt. The lookup matches email and
// password digest together, and any miss collapses into
// ErrInvalidCredentials so callers cannot probe for registered emails.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByCredentials(email, HashPassword(password))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}
