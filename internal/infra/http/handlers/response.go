package handlers

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the body of every failed /api call except the status
// PATCH, which answers with the bare {"error": code} shape.
type errorResponse struct {
	OK     bool     `json:"ok"`
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code string, fields ...string) {
	writeJSON(w, status, errorResponse{Error: code, Fields: fields})
}

func writeBareError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
