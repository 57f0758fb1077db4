// Package gemini adapts the Google generative AI SDK to the extraction
// client interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"veridoc/internal/extraction"
)

// Client calls the Gemini API with a JSON-only generation config. It holds
// one SDK client for the process lifetime.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Gemini-backed extraction client.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &Client{client: cl, model: strings.TrimSpace(model)}, nil
}

// Generate sends one structuring prompt and returns the raw response text.
// The caller owns parsing; nothing here assumes the output is valid JSON.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(extraction.SystemInstruction)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classify(ctx, err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", extraction.NewClientError(extraction.ErrorBadData, "empty response", nil)
	}
	return txt, nil
}

// classify maps an SDK failure onto the normalized client error taxonomy.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return extraction.NewClientError(extraction.ErrorTimeout, "generate timed out", err)
	case errors.Is(err, context.Canceled):
		return extraction.NewClientError(extraction.ErrorInternal, "generate cancelled", err)
	default:
		return extraction.NewClientError(extraction.ErrorProviderOutage, "generate failed", err)
	}
}

// Close releases the underlying SDK client.
func (c *Client) Close() error {
	return c.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
