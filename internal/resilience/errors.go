package resilience

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
)

// StatusError is a non-2xx answer from an HTTP collaborator.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return e.Service + ": unexpected status " + strconv.Itoa(e.StatusCode) + ": " + body
}

// NewStatusError builds a StatusError for service.
func NewStatusError(service string, code int, body []byte) *StatusError {
	return &StatusError{Service: service, StatusCode: code, Body: string(body)}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// IsClientError reports whether err is a 4xx StatusError other than 408/429,
// i.e. a request the collaborator will keep refusing.
func IsClientError(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != 408 && se.StatusCode != 429
}
