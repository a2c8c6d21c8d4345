package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aurora-hq/saturn/pkg/providers"
)

func newTestClient(handler http.Handler) (*Client, func()) {
	srv := httptest.NewServer(handler)
	client := New()
	client.BaseURL = srv.URL
	client.HTTP = srv.Client()
	return client, srv.Close
}

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestProbeOK(t *testing.T) {
	client, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization = %q", auth)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Messages[0].Content == providers.PingPrompt {
			chatReply(t, w, "PONG")
		} else {
			chatReply(t, w, `{"status": "ok"}`)
		}
	}))
	defer done()

	result := client.Probe(context.Background(), "sk-test", "gpt-4o-mini")
	if result.Status != providers.ProbeOK {
		t.Fatalf("status = %q (detail: %s)", result.Status, result.Detail)
	}
}

func TestProbeRateLimited(t *testing.T) {
	client, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limit reached for requests"))
	}))
	defer done()

	result := client.Probe(context.Background(), "sk-test", "gpt-4o")
	if result.Status != providers.ProbeRateLimited {
		t.Fatalf("status = %q, want %q", result.Status, providers.ProbeRateLimited)
	}
}

func TestProbeBadKey(t *testing.T) {
	client, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api key"))
	}))
	defer done()

	result := client.Probe(context.Background(), "sk-bad", "gpt-4o")
	if result.Status != providers.ProbeUnavailable {
		t.Fatalf("status = %q, want %q", result.Status, providers.ProbeUnavailable)
	}
}

func TestAnalyze(t *testing.T) {
	client, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, "```json\n"+`{"summary": "Login fails on Safari", "type": "bug", "priority_score": 7, "suggested_labels": ["bug"], "potential_impact": "Safari users cannot log in"}`+"\n```")
	}))
	defer done()

	analysis, err := client.Analyze(context.Background(), "sk-test", "gpt-4o-mini", providers.AnalysisRequest{
		Context: "Users report login failures on Safari 17.",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.Summary != "Login fails on Safari" {
		t.Errorf("summary = %q", analysis.Summary)
	}
	if analysis.PriorityScore != 7 {
		t.Errorf("priority = %d", analysis.PriorityScore)
	}
}

func TestAnalyzeRateLimitSurfacesTypedError(t *testing.T) {
	client, done := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("quota exceeded"))
	}))
	defer done()

	_, err := client.Analyze(context.Background(), "sk-test", "gpt-4o", providers.AnalysisRequest{Context: "x"})
	if !providers.IsRateLimit(err) {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
}
