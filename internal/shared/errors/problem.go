// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
	// Extensions are serialized as top-level members next to the standard ones.
	Extensions map[string]any `json:"-"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension member.
// The map is copied so templates are never mutated.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

var reservedMembers = map[string]struct{}{
	"type": {}, "title": {}, "status": {}, "detail": {}, "instance": {},
}

// MarshalJSON flattens extension members into the top-level object.
// Extensions never override the standard members.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		if _, reserved := reservedMembers[k]; !reserved {
			out[k] = v
		}
	}
	out["type"] = p.Type
	out["title"] = p.Title
	out["status"] = p.Status
	if p.Detail != "" {
		out["detail"] = p.Detail
	}
	if p.Instance != "" {
		out["instance"] = p.Instance
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the standard members and collects the rest as extensions.
func (p *ProblemDetail) UnmarshalJSON(data []byte) error {
	type standard ProblemDetail
	var std standard
	if err := json.Unmarshal(data, &std); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ProblemDetail(std)
	for k, v := range raw {
		if _, reserved := reservedMembers[k]; reserved {
			continue
		}
		if p.Extensions == nil {
			p.Extensions = map[string]any{}
		}
		p.Extensions[k] = v
	}
	return nil
}

// Problem types as URI references.
const (
	TypeValidation          = "/problems/validation-error"
	TypeNotFound            = "/problems/not-found"
	TypeConflict            = "/problems/conflict"
	TypeInternal            = "/problems/internal-error"
	TypeBadRequest          = "/problems/bad-request"
	TypeInsufficientStock   = "/problems/insufficient-stock"
	TypeWriteConflict       = "/problems/write-conflict"
	TypeForecastUnavailable = "/problems/forecast-unavailable"
)

// Pre-defined problem templates.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	// ErrValidation indicates the request failed validation.
	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	// ErrConflict indicates a conflict with the current state, e.g. a duplicate name.
	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	// ErrInsufficientStock rejects a reduction larger than the stock on hand.
	ErrInsufficientStock = ProblemDetail{
		Type:   TypeInsufficientStock,
		Title:  "Insufficient Stock",
		Status: http.StatusConflict,
	}

	// ErrWriteConflict reports a lost optimistic-concurrency race; clients may retry.
	ErrWriteConflict = ProblemDetail{
		Type:   TypeWriteConflict,
		Title:  "Write Conflict",
		Status: http.StatusConflict,
	}.WithExtension("retryable", true)

	// ErrForecastUnavailable means the demand model could not be reached or answered badly.
	ErrForecastUnavailable = ProblemDetail{
		Type:   TypeForecastUnavailable,
		Title:  "Forecast Unavailable",
		Status: http.StatusBadGateway,
	}

	// ErrInternal indicates an unexpected server error.
	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}
