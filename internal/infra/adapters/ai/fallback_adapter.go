package ai

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"groq-chat-relay/internal/domain/ports/adapter"
	"groq-chat-relay/internal/infra/metrics"
)

var _ adapter.StreamOpener = (*FallbackAdapter)(nil)

// FallbackAdapter walks a fixed, priority-ordered candidate model list and
// commits to the first stream that opens. The scan is strictly sequential:
// a rejection is fully drained before the next candidate is tried.
type FallbackAdapter struct {
	models []string
	inner  adapter.StreamingChatAdapter
	log    *zerolog.Logger
}

func NewFallbackAdapter(models []string, inner adapter.StreamingChatAdapter, logger *zerolog.Logger) *FallbackAdapter {
	return &FallbackAdapter{models: models, inner: inner, log: logger}
}

// OpenStream returns the first successfully opened stream; later candidates
// are never attempted after a success. A per-candidate rejection becomes the
// new "last error". A transport failure aborts the scan and propagates.
func (f *FallbackAdapter) OpenStream(ctx context.Context, messages []adapter.Message) (string, io.ReadCloser, error) {
	lastErr := ""
	for _, model := range f.models {
		body, err := f.inner.StreamChat(ctx, model, messages)
		if err == nil {
			metrics.IncModelAttempt(model, true)
			f.log.Debug().Str("model", model).Msg("stream opened")
			return model, body, nil
		}
		metrics.IncModelAttempt(model, false)

		var ue *adapter.UpstreamError
		if !errors.As(err, &ue) {
			// Not a provider rejection: the request itself could not be
			// completed. Stop scanning.
			return "", nil, err
		}
		f.log.Warn().Str("model", model).Int("status", ue.StatusCode).Msg("candidate rejected")
		if ue.Body != "" {
			lastErr = ue.Body
		}
	}
	if lastErr == "" {
		lastErr = "Groq request failed"
	}
	return "", nil, &adapter.AllModelsFailedError{LastErr: lastErr}
}
