package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"groq-chat-relay/internal/domain/ports/adapter"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// encoding returns a shared cl100k_base encoder, or nil when the encoding
// data is unavailable. Groq's models are not tiktoken models; the counts
// feed metrics only and best-effort is fine.
func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		enc, _ = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	})
	return enc
}

// CountTokens estimates prompt tokens for a message list.
func CountTokens(messages []adapter.Message) int {
	e := encoding()
	if e == nil {
		return 0
	}
	n := 0
	for _, m := range messages {
		// 4 covers the per-message framing overhead of chat formats.
		n += len(e.Encode(m.Content, nil, nil)) + 4
	}
	return n
}

// CountText estimates tokens in a single completion text.
func CountText(text string) int {
	e := encoding()
	if e == nil || text == "" {
		return 0
	}
	return len(e.Encode(text, nil, nil))
}
