package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/LefterisXris/brew-bean-app/internal/middleware"
)

const maxBodyBytes = 64 << 10

type validatable interface {
	Validate() error
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	middleware.WriteError(w, r, status, msg)
}

// decodeBody reads a JSON body into v and validates it. On failure the
// error response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, v validatable) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			WriteError(w, r, http.StatusBadRequest, "request body is required")
			return false
		}
		WriteError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := v.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			WriteError(w, r, http.StatusUnprocessableEntity, verrs.Error())
			return false
		}
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
