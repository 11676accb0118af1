package backend

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
)

// Error is a normalised backend failure. It carries the HTTP status when
// one was received, a human-readable detail extracted from the response
// body when present, and a network-vs-server classification.
type Error struct {
	// Op is the failing operation, e.g. "DELETE /pdf/abc".
	Op string

	// Status is the HTTP status code, 0 for network failures.
	Status int

	// Detail is the message from the response body, or the transport
	// error text for network failures.
	Detail string

	// Network is true when the backend could not be reached at all.
	Network bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Network {
		return fmt.Sprintf("%s: backend unreachable: %s", e.Op, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: backend error (status %d): %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: backend error (status %d)", e.Op, e.Status)
}

// Is maps normalised failures onto the domain sentinels so callers can
// use errors.Is without knowing this package.
func (e *Error) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrBackendUnavailable:
		return e.Network
	default:
		return false
	}
}

// errorBody is the shape backends use for failure payloads. The detail
// message may live under any of these keys.
type errorBody struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Detail        string `json:"detail"`
	NeedsReupload bool   `json:"needsReupload"`
}

// detail returns the first non-empty detail field.
func (b errorBody) detail() string {
	switch {
	case b.Error != "":
		return b.Error
	case b.Message != "":
		return b.Message
	default:
		return b.Detail
	}
}

// parseError builds a normalised Error from a non-2xx response body.
func parseError(op string, status int, body []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return &Error{Op: op, Status: status, Detail: eb.detail()}
}
