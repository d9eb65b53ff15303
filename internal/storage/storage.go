package storage

import (
	"context"
	"errors"
	"time"

	"github.com/virti310/cybersafe-sub000/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrStale indicates a conditional update matched no row because the
// guarded state already moved on.
var ErrStale = errors.New("record state changed")

// UserStore captures persistence operations needed by the credential service.
// Emails are expected to be normalised by the caller; lookups still match
// case-insensitively.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)

	// SetResetOTP stores a pending OTP and its expiry, replacing any previous one.
	SetResetOTP(ctx context.Context, id int64, otp string, expiry time.Time) error
	// ConsumeResetOTP replaces the password hash and clears the pending OTP in
	// one statement, only if otp still matches and is unexpired at now.
	ConsumeResetOTP(ctx context.Context, id int64, otp, passwordHash string, now time.Time) error

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, profile models.Profile) (models.User, error)
	UpdateStatus(ctx context.Context, id int64, active bool, suspensionEnd *time.Time) (models.User, error)
}
