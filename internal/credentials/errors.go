package credentials

import "errors"

// Outcomes callers are expected to branch on. Anything not matching one of
// these via errors.Is is an internal failure.
var (
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("user already exists")
	ErrNotFound            = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidOTP          = errors.New("invalid OTP")
	ErrOTPExpired          = errors.New("OTP expired")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")
	ErrIncorrectPassword   = errors.New("incorrect current password")
	ErrForbidden           = errors.New("forbidden")
	ErrNotifierUnavailable = errors.New("notification service unavailable")
)
