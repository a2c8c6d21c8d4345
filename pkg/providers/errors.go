package providers

import (
	"errors"
	"fmt"
	"strings"
)

// RateLimitError reports a quota or rate-limit condition from a backend.
// It is the only error class that triggers router fallback.
type RateLimitError struct {
	Provider string
	Model    string
	Detail   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s/%s: rate limit exceeded: %s", e.Provider, e.Model, e.Detail)
}

// AuthError reports a rejected credential.
type AuthError struct {
	Provider string
	Detail   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Provider, e.Detail)
}

// ParseError reports a response that could not be decoded or that did
// not match the expected structured shape.
type ParseError struct {
	Provider string
	Detail   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unparseable response: %s", e.Provider, e.Detail)
}

// APIError reports a non-2xx backend response that is neither a
// rate-limit nor an authentication failure.
type APIError struct {
	Provider   string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: api error (status %d): %s", e.Provider, e.StatusCode, e.Detail)
}

// UnknownTypeError reports a provider type with no registered client.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no backend client registered for provider type %q", e.Type)
}

// IsRateLimit reports whether err is, or wraps, a rate-limit condition.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// rateLimitMarkers are substrings that identify quota exhaustion in
// backend error text when the HTTP status alone is ambiguous. Some
// backends return 400 or 403 for exhausted quotas.
var rateLimitMarkers = []string{
	"rate limit",
	"rate_limit",
	"ratelimit",
	"quota",
	"resource has been exhausted",
	"too many requests",
	"overloaded",
}

// looksRateLimited reports whether an error message describes a
// rate-limit or quota condition.
func looksRateLimited(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
