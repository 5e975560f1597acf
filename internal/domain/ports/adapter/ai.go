package adapter

import (
	"context"
	"fmt"
	"io"
)

// Message represents a chat message on the wire to the provider.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// UpstreamError is a non-success response from one candidate model.
// Body carries the provider's raw error text so the caller can surface
// the last one verbatim when every candidate rejects.
type UpstreamError struct {
	Model      string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: http %d: %s", e.Model, e.StatusCode, e.Body)
}

// AllModelsFailedError means every candidate model rejected the request.
// LastErr is the raw error body captured from the final rejection.
type AllModelsFailedError struct {
	LastErr string
}

func (e *AllModelsFailedError) Error() string {
	return "all models failed: " + e.LastErr
}

// StreamingChatAdapter is the port for one streaming completion request
// against a single model. It never retries; model fallback is the
// StreamOpener's job.
//
// On 2xx the returned body is the provider's unread event stream and the
// caller owns closing it. A provider rejection is returned as
// *UpstreamError with the response body drained; a transport failure is
// returned as-is.
type StreamingChatAdapter interface {
	StreamChat(ctx context.Context, model string, messages []Message) (io.ReadCloser, error)
}

// StreamOpener tries candidate models in priority order and commits to the
// first stream that opens. All candidates rejecting yields
// *AllModelsFailedError; a transport failure aborts the scan immediately.
type StreamOpener interface {
	OpenStream(ctx context.Context, messages []Message) (model string, body io.ReadCloser, err error)
}
