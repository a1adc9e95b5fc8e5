package hawkbit

import (
	"errors"
	"fmt"
	"strings"
)

// NoStatus is the code reported when a failure has no HTTP status attached.
const NoStatus = -1

var (
	// ErrUnexpectedStatus is wrapped when the server answers with a status the operation does not expect.
	ErrUnexpectedStatus = errors.New("unexpected http status")
	// ErrServerError is wrapped when the server returns a hawkBit error payload.
	ErrServerError = errors.New("server returned an error payload")
	// ErrMissingField is wrapped when a response lacks an expected field or hyperlink.
	ErrMissingField = errors.New("missing field in response")
)

// APIError describes a failed management API call.
type APIError struct {
	// Op names the failed operation, e.g. "create software module".
	Op string
	// StatusCode is the HTTP status, or NoStatus.
	StatusCode int
	// ErrorCode is the hawkBit error code, if the server sent one.
	ErrorCode string
	// Message is the server-provided or local detail.
	Message string
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(e.Op)

	if e.StatusCode != NoStatus {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}

	if e.ErrorCode != "" {
		fmt.Fprintf(&b, " (%s)", e.ErrorCode)
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Code returns the HTTP status of the failure, or NoStatus.
func (e *APIError) Code() int {
	if e.StatusCode <= 0 {
		return NoStatus
	}

	return e.StatusCode
}

// StatusCode extracts the HTTP status from any error wrapping an *APIError.
// It returns NoStatus when there is none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code()
	}

	return NoStatus
}

// errorPayload is the body hawkBit returns for failed requests.
type errorPayload struct {
	ExceptionClass string `json:"exceptionClass"`
	ErrorCode      string `json:"errorCode"`
	Message        string `json:"message"`
}
