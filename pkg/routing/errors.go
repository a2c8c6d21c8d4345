package routing

import (
	"fmt"
	"strings"
)

// NoProvidersError means no usable entries exist at all.
type NoProvidersError struct{}

func (e *NoProvidersError) Error() string {
	return "no providers configured: set an API key (GEMINI_API_KEY, OPENAI_API_KEY, " +
		"ANTHROPIC_API_KEY, or HF_TOKEN) in the environment"
}

// NotFoundError means an explicit provider id did not resolve.
// Valid carries the currently known ids to guide the caller.
type NotFoundError struct {
	ID    string
	Valid []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown provider id %q; valid ids: [%s]", e.ID, strings.Join(e.Valid, ", "))
}

// AmbiguousError means no id was given while several usable entries
// exist. The caller must pick one of Usable.
type AmbiguousError struct {
	Usable []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple providers available, specify a provider id: [%s]", strings.Join(e.Usable, ", "))
}

// VerificationFailedError means an ASSUMED entry failed its
// verify-on-first-use check before the real call was attempted.
// Verified names currently AVAILABLE alternatives, if any.
type VerificationFailedError struct {
	ID       string
	Detail   string
	Verified []string
}

func (e *VerificationFailedError) Error() string {
	msg := fmt.Sprintf("provider %q failed verification: %s", e.ID, e.Detail)
	if len(e.Verified) > 0 {
		msg += fmt.Sprintf("; try a verified provider: [%s]", strings.Join(e.Verified, ", "))
	}
	return msg
}

// RateLimitExhaustedError means the primary and every attempted
// fallback were rate limited.
type RateLimitExhaustedError struct {
	PrimaryID string
	Attempted int
}

func (e *RateLimitExhaustedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s; tried %d provider(s), try again later",
		e.PrimaryID, e.Attempted)
}
