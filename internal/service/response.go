package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/winnyineza/choir-tickets/internal/logic"
)

// Envelope is the uniform JSON response shape.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, httpCode int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, httpCode int, message string, data interface{}) {
	writeJSON(w, httpCode, Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// WriteHttpError writes a standard JSON error response.
func WriteHttpError(w http.ResponseWriter, httpCode int, message string) {
	writeJSON(w, httpCode, Envelope{
		Status:  "error",
		Message: message,
	})
}

// writeLogicError maps the business error sentinels onto HTTP status codes.
// Anything unmapped is a 500 with a generic message so internals never leak.
func writeLogicError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, logic.ErrValidationFailed):
		WriteHttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, logic.ErrTierNotFound),
		errors.Is(err, logic.ErrOrderNotFound),
		errors.Is(err, logic.ErrInviteNotFound):
		WriteHttpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, logic.ErrInvalidCredentials),
		errors.Is(err, logic.ErrSessionExpired),
		errors.Is(err, logic.ErrInvalidToken):
		WriteHttpError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, logic.ErrAccountDeactivated),
		errors.Is(err, logic.ErrInsufficientRole),
		errors.Is(err, logic.ErrStaffNotAuthorized),
		errors.Is(err, logic.ErrProtectedOperator):
		WriteHttpError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, logic.ErrOrderExpired),
		errors.Is(err, logic.ErrInviteExpired):
		WriteHttpError(w, http.StatusGone, err.Error())
	case errors.Is(err, logic.ErrOutOfStock),
		errors.Is(err, logic.ErrExceedsPerOrderLimit),
		errors.Is(err, logic.ErrCapacityBelowSold),
		errors.Is(err, logic.ErrInvalidTransition),
		errors.Is(err, logic.ErrOrderNotConfirmed),
		errors.Is(err, logic.ErrTicketAlreadyUsed),
		errors.Is(err, logic.ErrInviteAlreadyUsed),
		errors.Is(err, logic.ErrInviteRevoked),
		errors.Is(err, logic.ErrEmailTaken):
		WriteHttpError(w, http.StatusConflict, err.Error())
	default:
		WriteHttpError(w, http.StatusInternalServerError, "internal server error")
	}
}

// validateStruct runs the shared validator and flattens field errors into a
// single readable message.
func validateStruct(ctx context.Context, validate *validator.Validate, payload interface{}) error {
	err := validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		messages[i] = fmt.Sprintf("invalid '%s' with value '%v'", fe.Field(), fe.Value())
	}
	return errors.New(strings.Join(messages, ", "))
}
