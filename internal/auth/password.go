// Package auth provides password hashing, reset-key generation, and
// session-token handling.
package auth

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/nhollis/inkwell/internal/apperror"
)

// defaultCost is the bcrypt work factor for production use.
const defaultCost = 12

// MinPasswordLength is the shortest password accepted when setting one.
const MinPasswordLength = 10

var (
	hasLetter = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
)

// PasswordService hashes and verifies passwords and reset keys with bcrypt.
// The cost is injectable so tests can run at the minimum cost.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService at the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost returns a PasswordService at a custom cost.
// Tests use bcrypt.MinCost; production code should not.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash bcrypt-hashes plaintext. The salt is generated by bcrypt and
// embedded in the output. Plaintext longer than 72 bytes is rejected
// because bcrypt would silently truncate it.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: secret must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing secret: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. The comparison
// is constant-time inside bcrypt. A mismatch (or an empty stored hash)
// returns an Authentication error; anything else is an internal failure.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if hash == "" {
		return apperror.Authentication("invalid credentials")
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.Authentication("invalid credentials")
		}
		return fmt.Errorf("auth: comparing hash: %w", err)
	}
	return nil
}

// CheckPasswordStrength enforces the password format: at least
// MinPasswordLength characters with at least one letter and one digit,
// within bcrypt's 72-byte limit. Violations come back as Malformed so the
// validator can fold them into its aggregate report.
func CheckPasswordStrength(plaintext string) error {
	if len(plaintext) < MinPasswordLength {
		return apperror.Malformed(fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(plaintext) > 72 {
		return apperror.Malformed("must be 72 characters or less")
	}
	if !hasLetter.MatchString(plaintext) || !hasDigit.MatchString(plaintext) {
		return apperror.Malformed("must contain at least one letter and one digit")
	}
	return nil
}
