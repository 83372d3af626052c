package httpapi

import (
	"encoding/json"
	"net/http"
)

// envelope is the common body of action endpoints.
type envelope struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	BriefingID string `json:"briefing_id,omitempty"`
	RunID      string `json:"run_id,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	Data       any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: "error", Message: message})
}
