package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

type envelope map[string]any

func errorResponse(w http.ResponseWriter, status int, code types.ErrorKind, message string) {
	env := envelope{"error": map[string]string{
		"code":    code.String(),
		"message": message,
	}}

	if err := writeJSON(w, status, env); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, data envelope) error {
	js, err := json.Marshal(data)
	if err != nil {
		return errors.New("failed to encode json")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}
