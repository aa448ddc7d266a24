// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON decodes a single JSON value from the request body into target.
// Malformed bodies and trailing data are reported as a ValidationError keyed
// on non_field_errors; type mismatches are keyed on the top-level field.
func DecodeJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return NewValidationError("non_field_errors", "Request body is required.")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(target); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return NewValidationError("non_field_errors", "Request body is required.")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			key, rest, _ := strings.Cut(typeErr.Field, ".")
			msg := fmt.Sprintf("Expected %s.", typeErr.Type.String())
			if rest != "" {
				msg = rest + ": " + msg
			}
			return NewValidationError(key, msg)
		default:
			return NewValidationError("non_field_errors", "JSON parse error.")
		}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return NewValidationError("non_field_errors", "JSON parse error.")
	}
	return nil
}
