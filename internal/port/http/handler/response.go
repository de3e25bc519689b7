package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MaheshMoholkar/ignite-lms/internal/auth"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
	"github.com/MaheshMoholkar/ignite-lms/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps service and repository sentinel errors onto HTTP statuses.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidActivationCode):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenMalformed):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrNotVerified):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
		message = "resource not found"
	case errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, service.ErrAlreadyEnrolled),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrLayoutExists):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, service.ErrActivationDelivery):
		status = http.StatusBadGateway
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: message})
}
