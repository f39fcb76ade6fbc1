// Package response writes the JSON envelope shared by every API response,
// including the ones produced outside huma (router 404/405, recovered panics).
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	domainerrors "github.com/shelfkeep/shelfkeep-server/internal/errors"
)

// Version is the envelope format version sent as "v".
const Version = 1

// Envelope wraps successful payloads and uncoded errors.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope wraps coded errors.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error writes a coded error envelope.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	write(w, status, ErrorEnvelope{
		Version: Version,
		Code:    string(code),
		Message: message,
	}, logger)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, domainerrors.CodeNotFound, message, logger)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, method string, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, domainerrors.CodeMethodNotAllowed,
		`method "`+method+`" not allowed`, logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, domainerrors.CodeInternal, message, logger)
}

func write(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
