package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/virti310/cybersafe-sub000/internal/credentials"
	"github.com/virti310/cybersafe-sub000/internal/http/respond"
	"github.com/virti310/cybersafe-sub000/internal/middleware"
	"github.com/virti310/cybersafe-sub000/internal/models/dto"
)

// AdminHandler serves account management for administrators.
type AdminHandler struct {
	svc      *credentials.Service
	validate *Validator
	logger   zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(svc *credentials.Service, validate *Validator, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, validate: validate, logger: logger}
}

// Register attaches /admin routes behind authn. The admin role itself is
// checked by the service.
func (h *AdminHandler) Register(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authn)
		r.Patch("/users/{id}/status", h.handleUpdateStatus)
	})
}

func (h *AdminHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || targetID <= 0 {
		writeBadRequest(w, "invalid user id")
		return
	}

	var req dto.UpdateStatusRequest
	if !h.validate.decode(w, r, &req) {
		return
	}
	suspensionEnd, err := parseTimestamp(req.SuspensionEndTime)
	if err != nil {
		writeBadRequest(w, "suspension_end_time must be an RFC 3339 timestamp")
		return
	}

	user, err := h.svc.SetStatus(r.Context(), actorID, targetID, *req.IsActive, suspensionEnd)
	if err != nil {
		writeServiceError(w, h.logger, "update_status", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UserResponse{User: user})
}
