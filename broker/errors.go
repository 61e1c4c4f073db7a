package broker

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigError reports an invalid broker or connector configuration. It is
// raised at construction time and is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError reports request parameters rejected before any network
// call. Names holds the offending parameter names, sorted, when the failure
// concerns specific parameters.
type ValidationError struct {
	Reason string
	Names  []string
}

func (e *ValidationError) Error() string {
	if len(e.Names) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: [%s]", e.Reason, strings.Join(e.Names, " "))
}

// StatusError represents a non-2xx response. The broker never interprets
// response bodies, but it captures a bounded copy so callers can inspect the
// upstream failure after the error propagates.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int

	// RawBody is a truncated copy of the response body.
	RawBody []byte

	// Response is the underlying response. Its body has been replaced with a
	// reader over RawBody; the network connection is already released.
	Response *http.Response
}

func (e *StatusError) Error() string {
	var b strings.Builder
	if e.Method != "" {
		b.WriteString(strings.ToUpper(e.Method))
		b.WriteString(" ")
	}
	if e.URL != "" {
		b.WriteString(e.URL)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "http %d", e.StatusCode)
	if t := http.StatusText(e.StatusCode); t != "" {
		b.WriteString(" ")
		b.WriteString(t)
	}
	return b.String()
}

// AsStatusError extracts a *StatusError from an error chain.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsHTTPStatus reports whether err is a StatusError with the given code.
func IsHTTPStatus(err error, code int) bool {
	se, ok := AsStatusError(err)
	return ok && se.StatusCode == code
}
