package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest password accepted, in bytes. bcrypt
// cannot hash more, and the same cap applies to argon2id so switching
// algorithms never changes which passwords are valid.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher turns plaintext passwords into salted hashes and checks them.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) bool
}

// Hasher hashes with one algorithm but verifies every supported encoding,
// so switching algorithms does not lock out existing accounts.
type Hasher struct {
	algorithm  string
	bcryptCost int
	argon      argon2.Config
}

// NewPasswordHasher builds a hasher for the named algorithm.
func NewPasswordHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	algorithm = strings.ToLower(strings.TrimSpace(algorithm))
	if algorithm == "" {
		algorithm = AlgorithmBcrypt
	}
	if algorithm != AlgorithmBcrypt && algorithm != AlgorithmArgon2id {
		return nil, fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{
		algorithm:  algorithm,
		bcryptCost: bcryptCost,
		argon:      argon2.DefaultConfig(),
	}, nil
}

// Algorithm reports which algorithm new hashes use.
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// Hash returns an encoded salted hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if h.algorithm == AlgorithmArgon2id {
		encoded, err := h.argon.HashEncoded([]byte(plain))
		if err != nil {
			return "", fmt.Errorf("argon2 hash: %w", err)
		}
		return string(encoded), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches encoded. Malformed hashes never match.
func (h *Hasher) Verify(plain, encoded string) bool {
	if encoded == "" {
		return false
	}
	if strings.HasPrefix(encoded, "$argon2") {
		ok, err := argon2.VerifyEncoded([]byte(plain), []byte(encoded))
		return err == nil && ok
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain)) == nil
}
