package ai

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// eventPrefix marks a payload-carrying line in the provider's event stream.
const eventPrefix = "data:"

// doneSentinel terminates the stream; it is not content and not an error.
const doneSentinel = "[DONE]"

// streamEvent is the subset of a provider frame the decoder cares about.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamDecoder incrementally turns a raw event-stream body into plain text
// increments. Bytes are buffered only up to each line boundary, so a
// multi-byte character split across network reads is reassembled before any
// text processing happens. Lines without the data: prefix, heartbeat lines,
// the [DONE] sentinel and malformed payloads are skipped silently.
//
// A decoder is single-use: when the stream ends or fails, any pending
// increment is delivered first, a read error is returned exactly once, and
// every later call returns io.EOF.
type StreamDecoder struct {
	r    *bufio.Reader
	err  error
	done bool
}

func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{r: bufio.NewReader(r)}
}

// Next returns the next non-empty text increment, io.EOF at stream end, or
// the underlying read error.
func (d *StreamDecoder) Next() (string, error) {
	if d.done {
		if err := d.err; err != nil {
			d.err = nil
			return "", err
		}
		return "", io.EOF
	}
	for {
		line, err := d.r.ReadString('\n')
		// A final unterminated line still counts. An error that arrives in
		// the same read is held back and reported by the next call.
		if delta, ok := decodeLine(line); ok {
			if err != nil {
				d.done = true
				if err != io.EOF {
					d.err = err
				}
			}
			return delta, nil
		}
		if err == io.EOF {
			d.done = true
			return "", io.EOF
		}
		if err != nil {
			d.done = true
			return "", err
		}
	}
}

// decodeLine extracts the incremental content of one event-frame line.
// The second return is false for anything that carries no content.
func decodeLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, eventPrefix) {
		return "", false
	}
	payload := strings.TrimSpace(trimmed[len(eventPrefix):])
	if payload == doneSentinel {
		return "", false
	}
	var ev streamEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return "", false
	}
	if len(ev.Choices) == 0 || ev.Choices[0].Delta.Content == "" {
		return "", false
	}
	return ev.Choices[0].Delta.Content, true
}
