package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Probe prompts. The two-step check first confirms the model answers at
// all, then confirms it can follow a structured-output instruction,
// which is what real analysis calls depend on.
const (
	PingPrompt = "Respond with exactly the word: PONG"
	pingToken  = "PONG"

	StructuredProbePrompt = `Respond with exactly this JSON object and nothing else: {"status": "ok"}`
)

// CompletionFunc issues one single-prompt completion against a backend
// and returns the raw text content of the reply.
type CompletionFunc func(ctx context.Context, prompt string) (string, error)

// RunProbe drives the shared two-step probe protocol through a
// vendor-specific completion function. Errors from the completion
// function are classified into probe statuses; content mismatches are
// reported as ProbeError since they indicate a model that cannot be
// trusted with structured output.
func RunProbe(ctx context.Context, provider string, complete CompletionFunc) ProbeResult {
	start := time.Now()

	reply, err := complete(ctx, PingPrompt)
	if err != nil {
		return classifyProbeErr(err, time.Since(start))
	}
	if !PingOK(reply) {
		return ProbeResult{
			Status:    ProbeError,
			LatencyMs: time.Since(start).Milliseconds(),
			Detail:    "unexpected ping reply",
		}
	}

	reply, err = complete(ctx, StructuredProbePrompt)
	if err != nil {
		return classifyProbeErr(err, time.Since(start))
	}
	if !StructuredOK(reply) {
		return ProbeResult{
			Status:    ProbeError,
			LatencyMs: time.Since(start).Milliseconds(),
			Detail:    "structured output check failed",
		}
	}

	return ProbeResult{Status: ProbeOK, LatencyMs: time.Since(start).Milliseconds()}
}

func classifyProbeErr(err error, elapsed time.Duration) ProbeResult {
	result := ProbeResult{LatencyMs: elapsed.Milliseconds(), Detail: err.Error()}

	var rle *RateLimitError
	var authErr *AuthError
	switch {
	case errors.As(err, &rle):
		result.Status = ProbeRateLimited
		result.Detail = rle.Detail
	case errors.As(err, &authErr):
		result.Status = ProbeUnavailable
		result.Detail = authErr.Detail
	default:
		result.Status = ProbeError
	}
	return result
}

// PingOK reports whether a ping reply contains the expected token.
// Models often wrap the answer in punctuation or restate the question,
// so a substring match is used rather than equality.
func PingOK(reply string) bool {
	return strings.Contains(strings.ToUpper(reply), pingToken)
}

// StructuredOK reports whether a structured-probe reply decodes to the
// expected {"status": "ok"} object.
func StructuredOK(reply string) bool {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &payload); err != nil {
		return false
	}
	return strings.EqualFold(payload.Status, "ok")
}

// ExtractJSON strips markdown code fences and surrounding prose from a
// model reply, returning the first top-level JSON object found. Models
// frequently wrap JSON in ```json fences despite instructions not to.
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
