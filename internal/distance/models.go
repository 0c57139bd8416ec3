package distance

import (
	"fmt"
	"net/http"
)

// Element statuses reported by the routing provider.
const (
	StatusOK            = "OK"
	StatusNotFound      = "NOT_FOUND"
	StatusZeroResults   = "ZERO_RESULTS"
	StatusRequestDenied = "REQUEST_DENIED"
)

// Measure is a duration in seconds or a distance in meters, with its display text.
type Measure struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}

// Element is the route between one origin and one destination. Callers must
// check Status before reading Duration.
type Element struct {
	Status       string   `json:"status"`
	Duration     *Measure `json:"duration,omitempty"`
	Distance     *Measure `json:"distance,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

// Row holds the elements for one origin.
type Row struct {
	Elements []Element `json:"elements"`
}

// Result is the canonical distance response: exactly one row with one element.
type Result struct {
	Rows       []Row `json:"rows"`
	IsMockData bool  `json:"isMockData,omitempty"`
}

// Matrix is a provider's distance-matrix reply before normalization.
type Matrix struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Rows         []Row  `json:"rows"`
}

// ProviderError is returned by a MatrixFetcher when the provider rejects a
// request, either with an HTTP error status or a top-level status other than OK.
type ProviderError struct {
	StatusCode int    // HTTP status, 0 if the reply was a 200
	Status     string // provider status such as REQUEST_DENIED, if any
	Message    string
}

func (e *ProviderError) Error() string {
	label := e.Status
	if label == "" {
		label = http.StatusText(e.StatusCode)
	}
	if e.StatusCode != 0 {
		label = fmt.Sprintf("%d %s", e.StatusCode, label)
	}
	if e.Message == "" {
		return fmt.Sprintf("routing provider error (%s)", label)
	}
	return fmt.Sprintf("routing provider error (%s): %s", label, e.Message)
}

// IsAuthFailure reports whether the provider rejected the credential.
func (e *ProviderError) IsAuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.StatusCode == http.StatusForbidden ||
		e.Status == StatusRequestDenied
}
