package handler

import (
	"net/http"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type apiError struct {
	Code    types.ErrorKind   `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func errorResponse(w http.ResponseWriter, status int, code types.ErrorKind, message string) {
	env := envelope{"error": apiError{Code: code, Message: message}}

	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serviceErrorResponse classifies err by its kind.
func serviceErrorResponse(w http.ResponseWriter, err error) {
	kind := types.KindOf(err)
	msg := err.Error()
	if kind == types.KindInternal {
		msg = "the server encountered a problem and could not process your request"
	}
	errorResponse(w, GetCode(err), kind, msg)
}

// failedValidationResponse returns 422 with the offending fields.
func failedValidationResponse(w http.ResponseWriter, fields map[string]string) {
	env := envelope{"error": apiError{
		Code:    types.KindInvalidRequest,
		Message: "request validation failed",
		Fields:  fields,
	}}

	if err := writeJSON(w, http.StatusUnprocessableEntity, env, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func badRequestResponse(w http.ResponseWriter, message string) {
	errorResponse(w, http.StatusBadRequest, types.KindInvalidRequest, message)
}

func internalErrorResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusInternalServerError, types.KindInternal, "the server encountered a problem and could not process your request")
}
