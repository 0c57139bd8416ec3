// Package apperr defines the failure taxonomy shared by the weather and distance
// services. Services return these typed errors and the HTTP layer renders them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of a failure.
type Kind int

const (
	// KindUnknown is reported for errors that are not *Error.
	KindUnknown Kind = iota
	// KindValidation indicates malformed or missing coordinate input.
	KindValidation
	// KindConfiguration indicates a missing or placeholder upstream credential.
	KindConfiguration
	// KindUpstream indicates an upstream error not covered by a fallback rule.
	KindUpstream
	// KindRouteUnavailable indicates the routing provider found no viable route.
	KindRouteUnavailable
	// KindInternal indicates a response assembled by the service broke its own contract.
	KindInternal
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	case KindRouteUnavailable:
		return "route_unavailable"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a classified failure.
type Error struct {
	Kind           Kind
	Message        string
	Op             string   // Operation that failed (optional)
	Err            error    // Underlying error (optional)
	Details        []string // Per-field messages for the response body (optional)
	UpstreamStatus int      // Status reported by the upstream provider (KindUpstream only)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status for this error. Every classified
// failure is a 400; internal errors are told apart in logs and metrics.
func (e *Error) HTTPStatus() int {
	return http.StatusBadRequest
}

// WithOp sets the operation and returns the error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Validation creates a validation error with optional per-field details.
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Configuration creates a configuration error.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// Upstream creates an upstream error carrying the provider's status.
func Upstream(status int, message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err, UpstreamStatus: status}
}

// RouteUnavailable creates a route-unavailable error.
func RouteUnavailable(message string) *Error {
	return &Error{Kind: KindRouteUnavailable, Message: message}
}

// Internal creates an internal contract-violation error.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from anywhere in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
