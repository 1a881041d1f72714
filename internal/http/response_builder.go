package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"insights/internal/core"
	applog "insights/internal/log"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// badRequestError marks client mistakes that are not domain validation
// failures: malformed JSON, unknown query values.
type badRequestError struct {
	field string
	msg   string
}

func (e *badRequestError) Error() string { return e.msg }

var errNotFound = errors.New("not found")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code: validation failures are 422, bad
// requests 400, missing resources 404 and everything else 500. Internal
// error text is logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *core.ValidationError
		berr *badRequestError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: verr.Error(), Field: verr.Field})
	case errors.As(err, &berr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: berr.msg, Field: berr.field})
	case errors.Is(err, errNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
