package dto

import (
	"net/http"
	"time"
)

// ProblemContentType is the media type of ProblemDetails bodies.
const ProblemContentType = "application/problem+json"

// ProblemDetails is the RFC 9457 error body, with traceId, timestamp, method
// and errors as extension members.
type ProblemDetails struct {
	Type      string              `json:"type"`
	Title     string              `json:"title"`
	Status    int                 `json:"status"`
	Detail    string              `json:"detail,omitempty"`
	Instance  string              `json:"instance,omitempty"`
	TraceID   string              `json:"traceId,omitempty"`
	Timestamp *time.Time          `json:"timestamp,omitempty"`
	Method    string              `json:"method,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

// ProblemType returns the RFC 9110 section describing status.
func ProblemType(status int) string {
	const base = "https://datatracker.ietf.org/doc/html/rfc9110#section-"
	switch status {
	case http.StatusBadRequest:
		return base + "15.5.1"
	case http.StatusUnauthorized:
		return base + "15.5.2"
	case http.StatusForbidden:
		return base + "15.5.4"
	case http.StatusNotFound:
		return base + "15.5.5"
	case http.StatusMethodNotAllowed:
		return base + "15.5.6"
	case http.StatusServiceUnavailable:
		return base + "15.6.4"
	case http.StatusInternalServerError:
		return base + "15.6.1"
	default:
		return "about:blank"
	}
}

// ProblemTitle returns the short summary used for status.
func ProblemTitle(status int, validation bool) string {
	switch {
	case status == http.StatusBadRequest && validation:
		return "Validation Error"
	case status == http.StatusBadRequest:
		return "Bad Request"
	case status == http.StatusNotFound:
		return "Resource Not Found"
	case status == 499:
		return "Client Closed Request"
	case status >= 500 && status != http.StatusServiceUnavailable:
		return "Internal Server Error"
	default:
		return http.StatusText(status)
	}
}
