// Package respond writes JSON responses and the uniform error body of the
// HTTP API.
package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes an ErrorBody with status.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: true, Code: code, Message: message})
}

// StageError writes an ErrorBody that names the failed processing stage.
func StageError(w http.ResponseWriter, status int, code, message, stage string) {
	JSON(w, status, ErrorBody{Error: true, Code: code, Message: message, Stage: stage})
}
