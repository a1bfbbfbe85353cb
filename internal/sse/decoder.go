// internal/sse/decoder.go
package sse

import (
	"encoding/json"
	"io"
)

// doneSentinel terminates an OpenAI-style completion stream.
const doneSentinel = "[DONE]"

// Event is one semantic delta decoded from a completion stream.
type Event struct {
	Content      string
	FinishReason string
}

// completionChunk mirrors the OpenAI streaming response shape; only the
// fields the decoder needs are declared.
type completionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Decoder turns an OpenAI-compatible completion byte stream into a lazy
// sequence of Events. Malformed payloads are skipped, never fatal.
type Decoder struct {
	frames *FrameReader
	done   bool
}

func NewDecoder(body io.ReadCloser) *Decoder {
	return &Decoder{frames: NewFrameReader(body)}
}

// Next returns the next event, or io.EOF when the stream terminated
// (end of bytes, [DONE] sentinel, or caller abort).
func (d *Decoder) Next() (Event, error) {
	if d.done {
		return Event{}, io.EOF
	}
	for {
		payload, err := d.frames.Next()
		if err != nil {
			d.done = true
			return Event{}, err
		}
		if payload == doneSentinel {
			// Anything after the sentinel is ignored.
			d.done = true
			d.frames.Close()
			return Event{}, io.EOF
		}

		var chunk completionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		ev := Event{
			Content:      chunk.Choices[0].Delta.Content,
			FinishReason: chunk.Choices[0].FinishReason,
		}
		if ev.Content == "" && ev.FinishReason == "" {
			continue
		}
		return ev, nil
	}
}

// Close releases the underlying stream.
func (d *Decoder) Close() error {
	return d.frames.Close()
}
