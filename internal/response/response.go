// Package response standardizes the JSON envelope every handler writes
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response shape
type Envelope struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// JSON writes a success envelope
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Envelope{Success: true, Data: data})
}

// Error writes a failure envelope
func Error(w http.ResponseWriter, status int, errorType, message string) {
	write(w, status, Envelope{
		Success: false,
		Error:   &ErrorDetail{Type: errorType, Message: message},
	})
}

// ErrorWithCode writes a failure envelope carrying a machine code
func ErrorWithCode(w http.ResponseWriter, status int, errorType, message, code string) {
	write(w, status, Envelope{
		Success: false,
		Error:   &ErrorDetail{Type: errorType, Message: message, Code: code},
	})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// encoding the envelope cannot fail for these value types
	_ = json.NewEncoder(w).Encode(env)
}
