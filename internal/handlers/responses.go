package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tonequest/internal/service"
	"tonequest/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service sentinel errors onto HTTP statuses.
// Anything unmapped becomes a 500 with a generic message; the real
// error goes to the log only.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr validation.Error
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrDeckNotFound),
		errors.Is(err, service.ErrWordNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrSessionEnded):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyDeck),
		errors.Is(err, service.ErrWordNotInSession),
		errors.Is(err, service.ErrInvalidResetToken):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
