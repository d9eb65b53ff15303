// Package otp issues the numeric one-time codes used for password recovery.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// Digits is the length of every issued code.
	Digits = 6
	// TTL is how long an issued code stays valid.
	TTL = 10 * time.Minute
)

var space = big.NewInt(1_000_000)

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() (string, error)

func (f GeneratorFunc) Generate() (string, error) { return f() }

// RandomGenerator draws codes uniformly from 000000..999999 using crypto/rand.
type RandomGenerator struct{}

// Generate returns a zero-padded six digit code.
func (RandomGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, space)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", Digits, n.Int64()), nil
}

// ExpiryFrom returns the instant a code issued at now stops being valid.
func ExpiryFrom(now time.Time) time.Time {
	return now.Add(TTL)
}
