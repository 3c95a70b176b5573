package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"studyhub/internal/apperr"
)

// decode parses a JSON body into a typed request and runs its validator,
// keeping schema checks out of the transport glue.
func decode[T interface{ Validate() map[string]string }](r *http.Request, dst T) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ErrValidation.WithMessage("malformed JSON body")
	}
	if problems := dst.Validate(); len(problems) > 0 {
		return apperr.ErrValidation.WithDetails(problems)
	}
	return nil
}

func uintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, apperr.ErrValidation.WithDetails(map[string]string{name: "must be a positive integer"})
	}
	return uint(id64), nil
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
