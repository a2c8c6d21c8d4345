// Package openai implements the backend client for the OpenAI chat
// completions API.
package openai

import (
	"context"
	"net/http"
	"time"

	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/registry"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to the OpenAI chat completions endpoint.
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

func (c *Client) Type() registry.Type { return registry.TypeOpenAI }

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

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, apiKey, model, prompt string) (string, error) {
	payload := chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{"Authorization": "Bearer " + apiKey}

	var resp chatResponse
	err := providers.PostJSON(ctx, c.HTTP, string(c.Type()), c.BaseURL+"/chat/completions", headers, payload, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &providers.ParseError{Provider: string(c.Type()), Detail: "empty choices"}
	}
	return resp.Choices[0].Message.Content, nil
}
