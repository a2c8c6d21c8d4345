// Package anthropic implements the backend client for the Anthropic
// messages API.
package anthropic

import (
	"context"
	"net/http"
	"time"

	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/registry"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	maxTokens      = 1024
)

// Client talks to the Anthropic messages endpoint.
type Client struct {
	// BaseURL overrides the API root, mainly for tests.
	BaseURL string
	HTTP    *http.Client
}

func New() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Type() registry.Type { return registry.TypeAnthropic }

func (c *Client) Probe(ctx context.Context, apiKey, model string) providers.ProbeResult {
	return providers.RunProbe(ctx, string(c.Type()), func(ctx context.Context, prompt string) (string, error) {
		return c.complete(ctx, apiKey, model, prompt)
	})
}

func (c *Client) Analyze(ctx context.Context, apiKey, model string, req providers.AnalysisRequest) (*providers.IssueAnalysis, error) {
	reply, err := c.complete(ctx, apiKey, model, providers.BuildAnalysisPrompt(req))
	if err != nil {
		return nil, err
	}
	return providers.ParseAnalysis(string(c.Type()), reply)
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) complete(ctx context.Context, apiKey, model, prompt string) (string, error) {
	payload := messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": apiVersion,
	}

	var resp messagesResponse
	err := providers.PostJSON(ctx, c.HTTP, string(c.Type()), c.BaseURL+"/v1/messages", headers, payload, &resp)
	if err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &providers.ParseError{Provider: string(c.Type()), Detail: "no text content block"}
}
