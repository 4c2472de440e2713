package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusOf picks the response code for err, fallback when err carries none.
func statusOf(err error, fallback int) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if code := httpErr.StatusCode(); code > 0 {
			return code
		}
	}
	return fallback
}

func writeError(w http.ResponseWriter, err error, fallback int) {
	code := statusOf(err, fallback)
	message := http.StatusText(code)
	if err != nil && code < http.StatusInternalServerError {
		message = err.Error()
	}
	writeJSON(w, code, errorResponse{Error: message})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: http.StatusText(http.StatusForbidden)})
		return
	}
	code := statusOf(err, http.StatusForbidden)
	writeJSON(w, code, errorResponse{Error: http.StatusText(code)})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}
