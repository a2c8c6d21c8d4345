package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxResponseBytes caps how much of a backend response body is read.
// Probe and analysis responses are small; anything larger is broken.
const maxResponseBytes = 1 << 20

// PostJSON sends a JSON payload to a backend endpoint and decodes the
// JSON response into out. Non-2xx statuses are classified into the
// typed errors of this package so callers can branch on condition
// rather than status code.
func PostJSON(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", provider, err)
	}

	if err := classifyStatus(provider, resp.StatusCode, raw); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{Provider: provider, Detail: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// classifyStatus converts a non-2xx response into a typed error.
// 429 is always a rate limit. Some backends report exhausted quotas
// through 400 or 403, so the body text is consulted as a tiebreaker
// before falling through to AuthError or APIError.
func classifyStatus(provider string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	detail := trimDetail(body)
	switch {
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Provider: provider, Detail: detail}
	case looksRateLimited(detail):
		return &RateLimitError{Provider: provider, Detail: detail}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Provider: provider, Detail: detail}
	default:
		return &APIError{Provider: provider, StatusCode: status, Detail: detail}
	}
}

// trimDetail shortens a response body to a log-safe single detail line.
func trimDetail(body []byte) string {
	const limit = 240
	s := string(bytes.TrimSpace(body))
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
