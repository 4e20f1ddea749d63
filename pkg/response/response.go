package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation:
		return http.StatusUnprocessableEntity
	case apperr.BadRequest:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.PermissionDenied:
		return http.StatusForbidden
	case apperr.Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Fail renders err as the single response for the request. Unclassified
// errors are logged and reported generically; their text never reaches the
// client.
func Fail(ctx context.Context, w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind == apperr.Internal {
		logger.WithCtx(ctx).Error("request failed", "error", err)
		Error(w, http.StatusInternalServerError, "Something went wrong, please try again later")
		return
	}

	status := StatusFor(e.Kind)
	if e.Kind == apperr.Upstream {
		logger.WithCtx(ctx).Warn("upstream failure", "error", err)
	}
	if e.Kind == apperr.Validation && len(e.Fields) > 0 {
		write(w, status, envelope{Status: status, Message: e.Message, Errors: e.Fields})
		return
	}
	Error(w, status, e.Message)
}
