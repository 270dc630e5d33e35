package client

import (
	"errors"
	"fmt"
)

// HTTPError is a non-2xx response from the Formula Cardz API. Message holds
// the server's "error" field when one was sent, otherwise the raw body.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err (or any error it wraps) is an HTTPError with
// the given status code. Callers use it to tell credential rejections (401)
// from transient failures.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
