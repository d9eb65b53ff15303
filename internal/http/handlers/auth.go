package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/virti310/cybersafe-sub000/internal/credentials"
	"github.com/virti310/cybersafe-sub000/internal/http/respond"
	"github.com/virti310/cybersafe-sub000/internal/middleware"
	"github.com/virti310/cybersafe-sub000/internal/models"
	"github.com/virti310/cybersafe-sub000/internal/models/dto"
)

// AuthHandler exposes the credential service under /auth.
type AuthHandler struct {
	svc      *credentials.Service
	validate *Validator
	logger   zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *credentials.Service, validate *Validator, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, validate: validate, logger: logger}
}

// Register attaches auth routes. authn guards the routes that act on the
// caller's own account.
func (h *AuthHandler) Register(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/forgot-password", h.handleForgotPassword)
		r.Post("/verify-otp", h.handleVerifyOTP)
		r.Post("/reset-password", h.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/change-password", h.handleChangePassword)
			r.Get("/me", h.handleMe)
			r.Put("/profile", h.handleUpdateProfile)
		})
	})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.validate.decode(w, r, &req) {
		return
	}
	birthdate, err := parseDate(req.Birthdate)
	if err != nil {
		writeBadRequest(w, "birthdate must be formatted as YYYY-MM-DD")
		return
	}

	session, err := h.svc.Register(r.Context(), credentials.RegisterParams{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Birthdate: birthdate,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, h.logger, "register", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.RegisterResponse{Token: session.Token, User: session.User})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.validate.decode(w, r, &req) {
		return
	}
	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, "login", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{Token: session.Token, User: dto.NewUserSummary(session.User)})
}

func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !h.validate.decode(w, r, &req) {
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, h.logger, "forgot_password", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "OTP sent to your email"})
}

func (h *AuthHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if !h.validate.decode(w, r, &req) {
		return
	}
	if err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		writeServiceError(w, h.logger, "verify_otp", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "OTP verified successfully"})
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !h.validate.decode(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeServiceError(w, h.logger, "reset_password", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Password reset successfully"})
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req dto.ChangePasswordRequest
	if !h.validate.decode(w, r, &req) {
		return
	}

	err := h.svc.ChangePassword(r.Context(), credentials.ChangePasswordParams{
		ActorID: actorID,
		Email:   req.Email,
		Current: req.CurrentPassword,
		New:     req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, h.logger, "change_password", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Password changed successfully"})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	user, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, "me", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserResponse{User: user})
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req dto.UpdateProfileRequest
	if !h.validate.decode(w, r, &req) {
		return
	}
	birthdate, err := parseDate(req.Birthdate)
	if err != nil {
		writeBadRequest(w, "birthdate must be formatted as YYYY-MM-DD")
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), userID, models.Profile{
		Name:      req.Name,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Birthdate: birthdate,
	})
	if err != nil {
		writeServiceError(w, h.logger, "update_profile", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserResponse{User: user})
}
