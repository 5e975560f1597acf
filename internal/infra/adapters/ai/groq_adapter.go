package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"groq-chat-relay/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.StreamingChatAdapter = (*GroqAdapter)(nil)

// errorBodyLimit caps how much of a rejection body we keep.
const errorBodyLimit = 8 << 10

// GroqAdapter opens streaming chat completions against Groq's
// OpenAI-compatible API. One outbound request per StreamChat call; model
// fallback lives in FallbackAdapter.
type GroqAdapter struct {
	apiKey      string
	base        string // e.g., https://api.groq.com/openai/v1
	temperature float64
	client      *http.Client
}

func NewGroqAdapter(apiKey, baseURL string, temperature float64) (*GroqAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("groq api key empty")
	}
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	return &GroqAdapter{
		apiKey:      apiKey,
		base:        baseURL,
		temperature: temperature,
		// No overall timeout: the response body is a long-lived event
		// stream and only the transport's own limits apply.
		client: &http.Client{},
	}, nil
}

func (g *GroqAdapter) StreamChat(ctx context.Context, model string, messages []adapter.Message) (io.ReadCloser, error) {
	reqBody := struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		Stream      bool              `json:"stream"`
		Temperature float64           `json:"temperature"`
	}{Model: model, Messages: messages, Stream: true, Temperature: g.temperature}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Fully drain the rejection before the caller moves on to the
		// next candidate.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil, &adapter.UpstreamError{
			Model:      model,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return resp.Body, nil
}
