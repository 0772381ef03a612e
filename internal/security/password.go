package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration and reset
const MinPasswordLength = 8

var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

type PasswordHasher struct {
	cost int
	// dummy is compared against when no user matches, so unknown emails
	// cost as much as wrong passwords.
	dummy []byte
}

func NewPasswordHasher() *PasswordHasher {
	return NewPasswordHasherWithCost(bcrypt.DefaultCost)
}

// NewPasswordHasherWithCost is used by tests to keep bcrypt fast
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	return &PasswordHasher{cost: cost, dummy: dummy}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

// Compare returns nil when password matches hash
func (h *PasswordHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// CompareDummy burns the same time as Compare and always fails
func (h *PasswordHasher) CompareDummy(password string) error {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	return bcrypt.ErrMismatchedHashAndPassword
}

// IsMismatch reports a wrong password as opposed to a malformed hash
func IsMismatch(err error) bool {
	return errors.Is(err, bcrypt.ErrMismatchedHashAndPassword)
}

// ResetTokenBytes is the entropy of a password reset token
const ResetTokenBytes = 32

// NewResetToken returns a URL-safe random token with 32 bytes of entropy
func NewResetToken() (string, error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
