package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind partitions transport failures into retry classes.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindRateLimit      ErrorKind = "rate_limit"
	KindOverloaded     ErrorKind = "overloaded"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindTimeout        ErrorKind = "timeout"
	KindUnknown        ErrorKind = "unknown"
)

// ClientError is a classified transport or provider failure. Retryable kinds
// (rate_limit, overloaded, timeout) are retried internally by Send; the rest
// abort immediately.
type ClientError struct {
	Kind       ErrorKind
	StatusCode int
	Retryable  bool
	Message    string
}

func (e *ClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("anthropic: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("anthropic: %s: %s", e.Kind, e.Message)
}

// classifyStatus maps a non-2xx HTTP status to a ClientError.
func classifyStatus(status int, message string) *ClientError {
	e := &ClientError{StatusCode: status, Message: message}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuthentication
	case status == http.StatusTooManyRequests:
		e.Kind, e.Retryable = KindRateLimit, true
	case status >= 500: // includes 503 and Anthropic's 529 overloaded
		e.Kind, e.Retryable = KindOverloaded, true
	case status == http.StatusBadRequest:
		e.Kind = KindInvalidRequest
	default:
		e.Kind = KindUnknown
	}
	return e
}

// classifyTransport maps a failed round-trip (no HTTP status) to a
// ClientError: deadline and cancellation become timeout, everything else
// (connection refused, DNS failure) is treated as overloaded. Both are
// retryable.
func classifyTransport(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ClientError{Kind: KindTimeout, Retryable: true, Message: err.Error()}
	}
	return &ClientError{Kind: KindOverloaded, Retryable: true, Message: err.Error()}
}
