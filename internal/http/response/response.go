package response

import (
	"encoding/json"
	"net/http"
	"time"

	"studyhub/internal/apperr"
)

type errorEnvelope struct {
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
	})
}

// AppError converts any error into the standard envelope; non-domain errors
// become 500 INTERNAL_ERROR.
func AppError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	Error(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
}
