package auth

import "errors"

// Kind classifies credential errors so handlers can map them to an
// HTTP status without string matching.
type Kind string

const (
	// KindValidation covers malformed input: missing fields or a
	// password that fails the policy.
	KindValidation Kind = "validation"
	// KindDuplicateEmail is returned when registration hits the
	// unique email constraint.
	KindDuplicateEmail Kind = "duplicate_email"
	// KindInvalidCredentials is returned on any failed login. It is
	// deliberately the same for unknown emails and wrong passwords.
	KindInvalidCredentials Kind = "invalid_credentials"
)

// Error is a credential error with a message safe to show the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = &Error{Kind: KindDuplicateEmail, Message: "Email already exists"}
	// ErrInvalidCredentials signals a failed login attempt.
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
)

// IsKind reports whether err is a credential error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
