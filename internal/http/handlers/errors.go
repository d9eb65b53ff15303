package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/virti310/cybersafe-sub000/internal/credentials"
	"github.com/virti310/cybersafe-sub000/internal/http/respond"
)

func writeBadRequest(w http.ResponseWriter, message string) {
	respond.Error(w, http.StatusBadRequest, message)
}

// writeServiceError maps credential outcomes onto HTTP. Anything unmapped is
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, op string, err error) {
	switch {
	case errors.Is(err, credentials.ErrValidation):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, credentials.ErrConflict),
		errors.Is(err, credentials.ErrInvalidCredentials),
		errors.Is(err, credentials.ErrInvalidOTP),
		errors.Is(err, credentials.ErrOTPExpired),
		errors.Is(err, credentials.ErrInvalidOrExpiredOTP),
		errors.Is(err, credentials.ErrIncorrectPassword):
		respond.Error(w, http.StatusBadRequest, rootMessage(err))
	case errors.Is(err, credentials.ErrNotFound):
		respond.Error(w, http.StatusNotFound, credentials.ErrNotFound.Error())
	case errors.Is(err, credentials.ErrForbidden):
		respond.Error(w, http.StatusForbidden, credentials.ErrForbidden.Error())
	case errors.Is(err, credentials.ErrNotifierUnavailable):
		logger.Warn().Err(err).Str("op", op).Msg("notifier unavailable")
		respond.Error(w, http.StatusServiceUnavailable, credentials.ErrNotifierUnavailable.Error())
	default:
		logger.Error().Err(err).Str("op", op).Msg("request failed")
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// rootMessage returns the message of the sentinel err wraps, never any
// wrapped detail.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		credentials.ErrConflict,
		credentials.ErrInvalidCredentials,
		credentials.ErrInvalidOTP,
		credentials.ErrOTPExpired,
		credentials.ErrInvalidOrExpiredOTP,
		credentials.ErrIncorrectPassword,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
