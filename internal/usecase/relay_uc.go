// File: internal/usecase/relay_uc.go
package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"groq-chat-relay/internal/domain/model"
	"groq-chat-relay/internal/domain/ports/adapter"
	"groq-chat-relay/internal/infra/adapters/ai"
	"groq-chat-relay/internal/infra/logging"
	"groq-chat-relay/internal/infra/metrics"
)

// Compile-time check
var _ RelayUseCase = (*relayUC)(nil)

// streamBuffer bounds the producer/consumer channel between the decode
// pump and the caller.
const streamBuffer = 16

// RelayUseCase resolves one chat request into an ordered sequence of plain
// text increments.
//
// A nil error means the response has begun: the channel yields increments
// in arrival order and is closed at stream end. Any failure after that
// point is delivered as a final inline error chunk, never as an error
// value. A non-nil error means nothing was started and the caller may still
// produce a terminal failure response.
type RelayUseCase interface {
	Stream(ctx context.Context, messages []adapter.Message) (<-chan string, error)
}

type relayUC struct {
	opener     adapter.StreamOpener
	configured bool // false when no upstream credential exists
	log        *zerolog.Logger
}

func NewRelayUseCase(opener adapter.StreamOpener, configured bool, logger *zerolog.Logger) *relayUC {
	return &relayUC{opener: opener, configured: configured, log: logger}
}

// SyntheticReply is the stand-in response used when no credential is
// configured. It echoes the most recent user message.
func SyntheticReply(messages []adapter.Message) string {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			last = messages[i].Content
			break
		}
	}
	return "No key configured. Set ai.groq_key in config.yaml. You said: " + last
}

func (u *relayUC) Stream(ctx context.Context, messages []adapter.Message) (<-chan string, error) {
	start := time.Now()

	if !u.configured {
		// Degraded mode, not an error. No network I/O happens.
		metrics.IncRelayRequest(metrics.ModeSynthetic)
		metrics.ObserveRelayLatency(metrics.ModeSynthetic, msSince(start))
		return oneShot(SyntheticReply(messages)), nil
	}

	mdl, body, err := u.opener.OpenStream(ctx, messages)
	if err != nil {
		var failed *adapter.AllModelsFailedError
		if errors.As(err, &failed) {
			// Every candidate rejected; still an ordinary response.
			metrics.IncRelayRequest(metrics.ModeAllFailed)
			metrics.ObserveRelayLatency(metrics.ModeAllFailed, msSince(start))
			return oneShot("All models failed. Last error: " + failed.LastErr), nil
		}
		metrics.IncRelayRequest(metrics.ModeError)
		metrics.ObserveRelayLatency(metrics.ModeError, msSince(start))
		logging.With(ctx, u.log).Error().Err(err).Msg("relay terminal failure")
		return nil, err
	}

	metrics.IncRelayRequest(metrics.ModeLive)
	metrics.ObserveRelayLatency(metrics.ModeLive, msSince(start))
	metrics.AddTokensIn(mdl, ai.CountTokens(messages))

	out := make(chan string, streamBuffer)
	go u.pump(ctx, mdl, body, out)
	return out, nil
}

// pump pulls decoded increments and forwards them in order. Once the first
// increment has been delivered the response is committed: any later failure
// is appended as visible inline text and the channel is closed.
func (u *relayUC) pump(ctx context.Context, mdl string, body io.ReadCloser, out chan<- string) {
	defer close(out)
	defer body.Close()

	dec := ai.NewStreamDecoder(body)
	tokens := 0
	for {
		chunk, err := dec.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				metrics.IncStreamError()
				logging.With(ctx, u.log).Warn().Err(err).Str("model", mdl).Msg("mid-stream failure")
				u.send(ctx, out, "\n[stream error] "+err.Error())
			}
			metrics.AddTokensOut(mdl, tokens)
			return
		}
		metrics.IncStreamChunk()
		tokens += ai.CountText(chunk)
		if !u.send(ctx, out, chunk) {
			// Caller gave up; closing the body aborts the upstream request.
			metrics.AddTokensOut(mdl, tokens)
			return
		}
	}
}

func (u *relayUC) send(ctx context.Context, out chan<- string, chunk string) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

func oneShot(text string) <-chan string {
	ch := make(chan string, 1)
	ch <- text
	close(ch)
	return ch
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Milliseconds())
}
