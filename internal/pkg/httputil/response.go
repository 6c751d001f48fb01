// Package httputil provides the JSON response envelopes, error mapping, and
// HTTP middleware shared by the API handlers.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// JSON writes a raw JSON response without envelope.
// Use Success for {"data": ...} wrapped responses.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Success writes a JSON response with the {"data": ...} envelope.
func Success(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

// Error writes a JSON response with the {"error": {"message": ...}} envelope.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": message},
	})
}

// ValidationError writes a 400 with per-field details when err is a
// validator.ValidationErrors, else with err.Error() as the details string.
func ValidationError(w http.ResponseWriter, err error) {
	var details any
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		fieldErrors := make([]map[string]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fieldErrors = append(fieldErrors, map[string]string{
				"field":   e.Field(),
				"message": e.Tag(),
			})
		}
		details = fieldErrors
	} else {
		details = err.Error()
	}

	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message": "validation error",
			"details": details,
		},
	})
}
