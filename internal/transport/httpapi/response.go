package httpapi

import (
	"encoding/json"
	"net/http"

	"section3/internal/errs"
)

// envelope is the shape of every response body.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError keeps partial data, such as a notification run with one failed scan.
func writeError(w http.ResponseWriter, err error, data any) {
	kind := errs.KindOf(err)
	writeJSON(w, statusFor(kind), envelope{
		Success:   false,
		Data:      data,
		Error:     err.Error(),
		ErrorKind: string(kind),
	})
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
