package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aurora-hq/saturn/pkg/providers"
)

func TestProbeOK(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if key := r.Header.Get("x-goog-api-key"); key != "AIza-test" {
			t.Errorf("api key header = %q", key)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query string %q, key must not travel in the URL", r.URL.RawQuery)
		}
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		text := req.Contents[0].Parts[0].Text
		reply := `{"status": "ok"}`
		if text == providers.PingPrompt {
			reply = "PONG"
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": reply}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := New()
	client.BaseURL = srv.URL
	client.HTTP = srv.Client()

	result := client.Probe(context.Background(), "AIza-test", "gemini-2.0-flash")
	if result.Status != providers.ProbeOK {
		t.Fatalf("status = %q (detail: %s)", result.Status, result.Detail)
	}
	for _, p := range paths {
		if !strings.HasSuffix(p, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("path = %q", p)
		}
	}
}

func TestProbeQuotaExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Resource has been exhausted"}}`))
	}))
	defer srv.Close()

	client := New()
	client.BaseURL = srv.URL
	client.HTTP = srv.Client()

	result := client.Probe(context.Background(), "AIza-test", "gemini-1.5-pro")
	if result.Status != providers.ProbeRateLimited {
		t.Fatalf("status = %q, want %q", result.Status, providers.ProbeRateLimited)
	}
}
