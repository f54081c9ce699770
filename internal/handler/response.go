package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chat-api/internal/model"
	"chat-api/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, message string, object any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.OK(message, object))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "unexpected server error"

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		message = apiErr.Message
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		message = "user not found"
	} else if errors.Is(err, model.ErrRoleNotFound) {
		status = http.StatusNotFound
		message = "role not found"
	} else if errors.Is(err, model.ErrEndpointNotFound) {
		status = http.StatusNotFound
		message = "endpoint not found"
	} else if errors.Is(err, model.ErrUserAlreadyExists) {
		status = http.StatusBadRequest
		message = "user already exists"
	} else if errors.Is(err, model.ErrEndpointConflict) {
		status = http.StatusBadRequest
		message = "an active endpoint already exists for that route and verb"
	} else if errors.Is(err, model.ErrPasswordMismatch) {
		status = http.StatusBadRequest
		message = "password does not match"
	} else if errors.Is(err, model.ErrAccountLocked) {
		status = http.StatusBadRequest
		message = "account is locked"
	} else if errors.Is(err, model.ErrTokenExpired) || errors.Is(err, model.ErrInvalidToken) {
		status = http.StatusUnauthorized
		message = "invalid or expired token"
	} else if errors.Is(err, model.ErrRefreshMismatch) {
		status = http.StatusUnauthorized
		message = "refresh token does not match the one on record"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		message = "invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Fail(message))
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierror.Validation("invalid JSON body")
	}
	return model.Validate(dst)
}
