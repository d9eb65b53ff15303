package models

import "time"

// User captures application-facing fields for a registered citizen.
type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Gender            string     `json:"gender"`
	Birthdate         *time.Time `json:"birthdate,omitempty"`
	Role              string     `json:"role"`
	IsActive          bool       `json:"is_active"`
	SuspensionEndTime *time.Time `json:"suspension_end_time,omitempty"`
	PasswordHash      string     `json:"-"`
	ResetOTP          *string    `json:"-"`
	OTPExpiry         *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HasPendingReset reports whether a recovery OTP is stored on the user.
func (u User) HasPendingReset() bool {
	return u.ResetOTP != nil && u.OTPExpiry != nil
}

// Profile holds the owner-editable fields of a user.
type Profile struct {
	Name      string
	Phone     string
	Gender    string
	Birthdate *time.Time
}
