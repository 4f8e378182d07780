package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func writeJSONErrorResponse(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{"error": code, "message": message})
}

// writeValidationErrorResponse adds the per-field messages under "fields".
func writeValidationErrorResponse(w http.ResponseWriter, message string, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "validation_error",
		"message": message,
		"fields":  fields,
	})
}
