package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// passwordSymbols is the set of characters that count as a special
// character for the password policy.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// ValidatePassword checks a password against the account policy:
// at least 8 characters with at least one uppercase letter, one
// lowercase letter, one digit and one special character.
func ValidatePassword(password string) error {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	if len(password) < 8 || !upper || !lower || !digit || !symbol {
		return &Error{
			Kind:    KindValidation,
			Message: "Password must be 8+ chars with uppercase, lowercase, number, special char",
		}
	}
	return nil
}

// HashPassword returns the hex-encoded SHA-256 digest of a password.
// The digest is deterministic and unsalted so that stored credentials
// stay compatible with existing user rows.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Username derives the account username from the local part of an
// email address. The email is expected to be lower-cased already.
func Username(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// GenerateSessionToken returns a cryptographically random token
// suitable for use as a session cookie value.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken keys a session row by the HMAC of the client-held token.
// The stored value cannot be replayed as a cookie without the server
// secret, so a leaked sessions table does not yield valid sessions.
func HashToken(secret, token string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
