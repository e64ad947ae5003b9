package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Type represents the category of a failed API call for metrics and
// user-facing message selection.
type Type string

const (
	// TypeUnreachable indicates no response reached us (transport failure)
	TypeUnreachable Type = "unreachable"
	// TypeUnauthorized indicates a dead or insufficient session (HTTP 401/403)
	TypeUnauthorized Type = "unauthorized"
	// TypeNotFound indicates the resource does not exist (HTTP 404)
	TypeNotFound Type = "not_found"
	// TypeValidation indicates the backend rejected the request (other 4xx)
	TypeValidation Type = "validation"
	// TypeServer indicates a backend-side failure (5xx)
	TypeServer Type = "server"
	// TypeMalformed indicates a 2xx response that failed to decode into the
	// caller's declared shape
	TypeMalformed Type = "malformed"
)

// Error is the structured error for any failed request. Status is 0 when no
// response reached the caller. Body carries the parsed response body, or
// {"error": rawText} when the body was not JSON.
type Error struct {
	Type    Type
	Message string
	Status  int
	URL     string
	Body    any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message suitable for a transient notification.
func (e *Error) UserMessage() string {
	switch e.Type {
	case TypeUnreachable:
		return "backend unreachable"
	case TypeUnauthorized:
		return "not authorized / invalid session"
	case TypeServer:
		return "backend unavailable"
	case TypeMalformed:
		return "unexpected response from backend"
	default:
		if e.Message != "" {
			return e.Message
		}
		return "request failed"
	}
}

func classifyStatus(status int) Type {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return TypeUnauthorized
	case status == http.StatusNotFound:
		return TypeNotFound
	case status >= 500:
		return TypeServer
	default:
		return TypeValidation
	}
}

// newHTTPError builds an Error for a non-2xx response. The message prefers
// what the backend said ("message" or "error" field) over a generic fallback.
func newHTTPError(status int, url string, body any) *Error {
	message := ""
	if m, ok := body.(map[string]any); ok {
		if s, ok := m["message"].(string); ok && s != "" {
			message = s
		} else if s, ok := m["error"].(string); ok && s != "" {
			message = s
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &Error{
		Type:    classifyStatus(status),
		Message: message,
		Status:  status,
		URL:     url,
		Body:    body,
	}
}

// AsError converts any error into a structured *Error. Non-client errors are
// wrapped as unreachable (the only way a raw error escapes this layer).
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Type: TypeUnreachable, Message: "backend unreachable", Cause: err}
}

// IsNotFound reports whether err is an API error for a missing resource.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == TypeNotFound
}

// IsUnauthorized reports whether err is an API error for a dead session.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == TypeUnauthorized
}

// IsUnreachable reports whether err is a transport-level failure.
func IsUnreachable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == TypeUnreachable
}
