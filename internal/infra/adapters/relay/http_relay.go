// File: internal/infra/adapters/relay/http_relay.go
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"groq-chat-relay/internal/domain/ports/adapter"
	"groq-chat-relay/internal/usecase"
)

var _ usecase.RelayUseCase = (*HTTPRelay)(nil)

// readBuffer is the per-read chunk size when consuming the response body.
const readBuffer = 4 << 10

// HTTPRelay talks to a running relay gateway over its public contract
// (POST /api/chat, plain-text streamed body). It lets the session state
// machine run in a separate process from the gateway.
type HTTPRelay struct {
	base   string // e.g., http://localhost:5174
	client *http.Client
}

func NewHTTPRelay(baseURL string) *HTTPRelay {
	return &HTTPRelay{
		base: strings.TrimRight(baseURL, "/"),
		// Streaming responses; no overall timeout.
		client: &http.Client{},
	}
}

func (h *HTTPRelay) Stream(ctx context.Context, messages []adapter.Message) (<-chan string, error) {
	body, _ := json.Marshal(struct {
		Messages []adapter.Message `json:"messages"`
	}{Messages: messages})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, readBuffer))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("chat request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		buf := make([]byte, readBuffer)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				select {
				case out <- string(buf[:n]):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					// Keep the partial reply; surface the drop inline the
					// same way the gateway does.
					select {
					case out <- "\n[stream error] " + err.Error():
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()
	return out, nil
}
