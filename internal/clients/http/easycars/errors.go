package easycars

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// APIError is a permanent failure reported by EasyCars or its gateway.
type APIError struct {
	Operation  string
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != CodeSuccess {
		return fmt.Sprintf("easycars %s failed (code %d): %s", e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("easycars %s failed (http %d): %s", e.Operation, e.StatusCode, e.Message)
}

// TemporaryError wraps failures that are expected to succeed when retried.
type TemporaryError struct {
	Err error
}

func (e *TemporaryError) Error() string {
	return "temporary: " + e.Err.Error()
}

func (e *TemporaryError) Unwrap() error { return e.Err }

// IsTemporary reports whether err is, or wraps, a TemporaryError.
func IsTemporary(err error) bool {
	var temporary *TemporaryError
	return errors.As(err, &temporary)
}

func classifyStatus(operation string, statusCode int, message string) error {
	apiErr := &APIError{Operation: operation, StatusCode: statusCode, Message: message}
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &TemporaryError{Err: apiErr}
	default:
		return apiErr
	}
}

func classifyEnvelope(operation string, env Envelope) error {
	if env.Code == CodeSuccess {
		return nil
	}
	apiErr := &APIError{Operation: operation, StatusCode: http.StatusOK, Code: env.Code, Message: env.ResponseMessage}
	if env.Code == CodeTemporary {
		return &TemporaryError{Err: apiErr}
	}
	return apiErr
}

func classifyTransport(operation string, err error) error {
	wrapped := fmt.Errorf("call easycars %s: %w", operation, err)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TemporaryError{Err: wrapped}
	}
	return wrapped
}
