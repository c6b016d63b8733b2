// Package resilience classifies upstream failures so the HTTP layer can map
// them to client-facing status codes. Nothing here retries: failed upstream
// calls are surfaced once and the client decides whether to try again.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// ErrRateLimited marks an upstream HTTP 429; propagated to the caller as 429.
var ErrRateLimited = errors.New("upstream rate limited")

// ErrQuotaExceeded marks an upstream HTTP 402; propagated to the caller as 402
// so clients can distinguish "try later" from "billing required".
var ErrQuotaExceeded = errors.New("upstream quota exceeded")

// TransientError wraps an error caused by a transient upstream condition
// (5xx, network timeout). Used for logging classification only.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// ClassifyStatus maps an upstream HTTP status to the matching typed error,
// or nil when the status is not a recognized failure class.
func ClassifyStatus(statusCode int) error {
	switch statusCode {
	case 429:
		return ErrRateLimited
	case 402:
		return ErrQuotaExceeded
	default:
		return nil
	}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches common transient error patterns (network
// timeouts, connection resets, DNS failures).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
