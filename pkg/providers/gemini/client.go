// Package gemini implements the backend client for the Google Gemini
// generateContent API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/registry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the Gemini generateContent endpoint. The API key is
// passed in the x-goog-api-key header, never in the URL, so transport
// errors cannot embed it.
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

func (c *Client) Type() registry.Type { return registry.TypeGemini }

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

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) complete(ctx context.Context, apiKey, model, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, url.PathEscape(model))
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	headers := map[string]string{"x-goog-api-key": apiKey}

	var resp generateResponse
	err := providers.PostJSON(ctx, c.HTTP, string(c.Type()), endpoint, headers, payload, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &providers.ParseError{Provider: string(c.Type()), Detail: "empty candidates"}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
