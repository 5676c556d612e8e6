package services

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrSymbolNotFound is returned when the provider does not know the symbol
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrNoData is returned when the provider answered but had nothing usable
	ErrNoData = errors.New("no data returned")

	// ErrServiceUnavailable is returned when a circuit breaker rejects a call
	ErrServiceUnavailable = errors.New("service unavailable")
)

// StatusError is a non-2xx response from an upstream API
type StatusError struct {
	Service    string
	Operation  string
	StatusCode int
	RetryAfter time.Duration // zero when the response carried no hint
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d", e.Service, e.Operation, e.StatusCode)
}

// Retryable reports whether the status is worth another attempt
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// statusErr builds the error for a failed response, marking client errors
// other than rate limiting as permanent.
func statusErr(service, operation string, resp *http.Response) error {
	err := &StatusError{
		Service:    service,
		Operation:  operation,
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
	if err.StatusCode == http.StatusNotFound {
		return Permanent(fmt.Errorf("%w: %w", ErrSymbolNotFound, err))
	}
	if !err.Retryable() {
		return Permanent(err)
	}
	return err
}

// parseRetryAfter reads either form of the header: delay seconds or an HTTP date
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// ErrorType maps an error to a short label for metrics
func ErrorType(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSymbolNotFound):
		return "not_found"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrServiceUnavailable):
		return "circuit_open"
	case errors.As(err, &se):
		return fmt.Sprintf("http_%d", se.StatusCode)
	default:
		return "request_failed"
	}
}
