// Package errors renders RFC 7807 Problem Details for the sync API.
package errors

import "net/http"

// ProblemDetail is an RFC 7807 body. It implements error so services can return it directly.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return p.Title + ": " + p.Detail
}

// WithDetail returns a copy carrying detail.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with key set; the receiver's map is left untouched.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	extensions := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		extensions[k] = v
	}
	extensions[key] = value
	p.Extensions = extensions
	return p
}

func problem(slug, title string, status int) ProblemDetail {
	return ProblemDetail{Type: "/problems/" + slug, Title: title, Status: status}
}

// Templates used by the API. Copy them with WithDetail before responding.
var (
	ErrBadRequest = problem("bad-request", "Bad Request", http.StatusBadRequest)
	ErrValidation = problem("validation-error", "Validation Error", http.StatusBadRequest)
	ErrNotFound   = problem("not-found", "Resource Not Found", http.StatusNotFound)
	// ErrConflict covers already-resolved conflicts and refused status transitions.
	ErrConflict = problem("conflict", "Conflict", http.StatusConflict)
	ErrInternal = problem("internal-error", "Internal Server Error", http.StatusInternalServerError)
)

// NewValidationProblem reports per-field errors under the "fields" extension.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}
