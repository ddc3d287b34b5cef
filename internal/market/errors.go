package market

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call.
type Kind string

const (
	KindTransport    Kind = "TRANSPORT"
	KindValidation   Kind = "VALIDATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindServer       Kind = "SERVER"
)

// Error is returned by every Client operation that fails. Message is safe to
// show to the user.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("%s returned status %d", e.Op, e.Status)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf returns the classification of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsUnauthorized reports whether the API rejected the session token.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// DisplayMessage extracts a human-readable message from any error.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

func transportError(op string, cause error) *Error {
	return &Error{Op: op, Kind: KindTransport, Cause: cause}
}
