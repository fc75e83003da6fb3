package server

import (
	"encoding/json"
	"net/http"

	"github.com/YIFUNLIN/mindflow/pkg/errors"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code errors.Code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeErr maps an error to an HTTP status by its code and writes the
// envelope. Internal causes are not leaked to clients.
func writeErr(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeError(w, statusFor(code), code, errors.UserMessage(err))
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidHierarchy,
		errors.ErrCodeInvalidDiagram,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidGeometry,
		errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
