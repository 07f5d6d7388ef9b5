package request

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidURL is returned by Run when the operation's URL cannot be
// parsed or has no host.
var ErrInvalidURL = errors.New("request: invalid URL")

// StatusError reports a response with a 4xx or 5xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// retryable reports whether a response with this status is worth
// another attempt.
func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
