package safecomms

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ConfigurationError reports invalid client construction, such as a missing
// API key.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid client configuration: %s", e.Reason)
}

// ValidationError reports invalid caller input. It is returned before any
// network activity occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NetworkError wraps a transport-level failure (connection refused, timeout,
// canceled context).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthenticationError reports a rejected credential.
type AuthenticationError struct {
	Status  int
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Message)
}

// RateLimitError reports an exceeded quota. RetryAfter is zero when the
// server did not send a parseable Retry-After header.
type RateLimitError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (status %d): %s", e.Status, e.Message)
}

// ServerError reports a non-success response not otherwise classified.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// DecodeError reports a response body that does not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// problemDetails is the RFC 7807 error body the API returns on failure.
type problemDetails struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// problemMessage extracts a human-readable message from an error response
// body, falling back to the HTTP status text.
func problemMessage(status int, body []byte) string {
	var problem problemDetails
	if err := json.Unmarshal(body, &problem); err == nil {
		if problem.Detail != "" {
			return problem.Detail
		}
		if problem.Title != "" {
			return problem.Title
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return string(body)
}

// classifyStatus maps a non-2xx response to a typed error.
func classifyStatus(status int, body []byte, header http.Header) error {
	msg := problemMessage(status, body)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthenticationError{Status: status, Message: msg}
	case http.StatusTooManyRequests:
		return &RateLimitError{Status: status, Message: msg, RetryAfter: parseRetryAfter(header)}
	default:
		return &ServerError{Status: status, Message: msg}
	}
}

func parseRetryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
