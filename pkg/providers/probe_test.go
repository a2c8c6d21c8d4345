package providers

import (
	"context"
	"errors"
	"testing"
)

func TestRunProbeOK(t *testing.T) {
	replies := []string{"PONG", `{"status": "ok"}`}
	calls := 0
	result := RunProbe(context.Background(), "openai", func(ctx context.Context, prompt string) (string, error) {
		reply := replies[calls]
		calls++
		return reply, nil
	})

	if result.Status != ProbeOK {
		t.Fatalf("status = %q, want %q (detail: %s)", result.Status, ProbeOK, result.Detail)
	}
	if calls != 2 {
		t.Errorf("completion calls = %d, want 2", calls)
	}
	if result.LatencyMs < 0 {
		t.Errorf("latency = %d, want >= 0", result.LatencyMs)
	}
}

func TestRunProbeBadPing(t *testing.T) {
	result := RunProbe(context.Background(), "openai", func(ctx context.Context, prompt string) (string, error) {
		return "I am a language model", nil
	})
	if result.Status != ProbeError {
		t.Fatalf("status = %q, want %q", result.Status, ProbeError)
	}
	if result.Detail != "unexpected ping reply" {
		t.Errorf("detail = %q", result.Detail)
	}
}

func TestRunProbeBadStructuredReply(t *testing.T) {
	replies := []string{"PONG", "sure, here you go"}
	calls := 0
	result := RunProbe(context.Background(), "openai", func(ctx context.Context, prompt string) (string, error) {
		reply := replies[calls]
		calls++
		return reply, nil
	})
	if result.Status != ProbeError {
		t.Fatalf("status = %q, want %q", result.Status, ProbeError)
	}
	if result.Detail != "structured output check failed" {
		t.Errorf("detail = %q", result.Detail)
	}
}

func TestRunProbeClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ProbeStatus
	}{
		{"rate limit", &RateLimitError{Provider: "openai", Detail: "quota exceeded"}, ProbeRateLimited},
		{"auth", &AuthError{Provider: "openai", Detail: "invalid key"}, ProbeUnavailable},
		{"generic", errors.New("connection refused"), ProbeError},
		{"api error", &APIError{Provider: "openai", StatusCode: 500, Detail: "boom"}, ProbeError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := RunProbe(context.Background(), "openai", func(ctx context.Context, prompt string) (string, error) {
				return "", tc.err
			})
			if result.Status != tc.want {
				t.Errorf("status = %q, want %q", result.Status, tc.want)
			}
		})
	}
}

func TestPingOK(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"PONG", true},
		{"PONG.", true},
		{"pong", true},
		{"The answer is: PONG", true},
		{"ping", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := PingOK(tc.reply); got != tc.want {
			t.Errorf("PingOK(%q) = %v, want %v", tc.reply, got, tc.want)
		}
	}
}

func TestStructuredOK(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{`{"status": "ok"}`, true},
		{`{"status": "OK"}`, true},
		{"```json\n{\"status\": \"ok\"}\n```", true},
		{`Here is the object: {"status": "ok"}`, true},
		{`{"status": "error"}`, false},
		{"ok", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := StructuredOK(tc.reply); got != tc.want {
			t.Errorf("StructuredOK(%q) = %v, want %v", tc.reply, got, tc.want)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	fenced := "```json\n{\"a\": 1}\n```"
	if got := ExtractJSON(fenced); got != `{"a": 1}` {
		t.Errorf("ExtractJSON(fenced) = %q", got)
	}
	if got := ExtractJSON("no json here"); got != "no json here" {
		t.Errorf("ExtractJSON(plain) = %q", got)
	}
}
