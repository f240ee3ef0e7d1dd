package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fitlens/backend/internal/contextkeys"
	"github.com/fitlens/backend/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.WithError(err).Error("failed to encode JSON response")
		}
	}
}

// Error writes an error JSON response, using AppError status codes when
// available.
func Error(w http.ResponseWriter, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		if appErr.Err != nil {
			logrus.WithError(appErr.Err).Error(appErr.Message)
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.Message})
		return
	}
	logrus.WithError(err).Error("unhandled error")
	JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// DecodeJSON decodes a JSON request body into the given struct and runs
// struct validation.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrBadRequest("invalid JSON body")
	}
	if err := validate.Struct(v); err != nil {
		return domain.ErrBadRequest("missing or malformed fields: " + err.Error())
	}
	return nil
}

// checkUser verifies that the body userId matches the authenticated subject.
// Requests outside the auth group have no subject in context and pass.
func checkUser(r *http.Request, userID string) error {
	sub, ok := r.Context().Value(contextkeys.UserID).(string)
	if ok && sub != "" && sub != userID {
		return domain.ErrUnauthorized("userId does not match authenticated user")
	}
	return nil
}
