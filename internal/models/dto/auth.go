package dto

import (
	"strings"

	"github.com/virti310/cybersafe-sub000/internal/models"
)

type RegisterRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email,max=320"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Gender    string `json:"gender" validate:"omitempty,max=32"`
	Birthdate string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Password  string `json:"password" validate:"required,max=72"`
}

// Normalize trims the text fields so padded input passes the format rules
// the same way it does on the other auth endpoints.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Gender = strings.TrimSpace(r.Gender)
	r.Birthdate = strings.TrimSpace(r.Birthdate)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

type ChangePasswordRequest struct {
	Email           string `json:"email" validate:"omitempty"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=72"`
}

type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Gender    string `json:"gender" validate:"omitempty,max=32"`
	Birthdate string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateStatusRequest struct {
	IsActive          *bool  `json:"is_active" validate:"required"`
	SuspensionEndTime string `json:"suspension_end_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// UserSummary is the minimal identity returned by login.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type RegisterResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type UserResponse struct {
	User models.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// NewUserSummary trims a user down to the fields login exposes.
func NewUserSummary(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Name, Email: u.Email, Role: u.Role}
}
