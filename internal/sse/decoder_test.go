package sse

import (
	"context"
	"io"
	"strings"
	"testing"
)

// chunkReader serves a fixed byte sequence split into predefined chunks.
type chunkReader struct {
	chunks [][]byte
	closed bool
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func (r *chunkReader) Close() error {
	r.closed = true
	return nil
}

// abortReader fails with the given error after serving its prefix.
type abortReader struct {
	prefix string
	err    error
	closed bool
}

func (r *abortReader) Read(p []byte) (int, error) {
	if r.prefix != "" {
		n := copy(p, r.prefix)
		r.prefix = r.prefix[n:]
		return n, nil
	}
	return 0, r.err
}

func (r *abortReader) Close() error {
	r.closed = true
	return nil
}

func collect(t *testing.T, d *Decoder) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		events = append(events, ev)
	}
}

func TestDecoderBasicStream(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n" +
		"data: [DONE]\n"

	d := NewDecoder(io.NopCloser(strings.NewReader(stream)))
	events := collect(t, d)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(events), events)
	}
	if events[0].Content != "Hello" || events[1].Content != " world" {
		t.Errorf("unexpected contents: %q %q", events[0].Content, events[1].Content)
	}
	if events[2].FinishReason != "stop" {
		t.Errorf("expected finish_reason stop, got %q", events[2].FinishReason)
	}
}

func TestDecoderChunkBoundaryIdempotence(t *testing.T) {
	// Multibyte content so splits can land inside a UTF-8 sequence.
	full := "data: {\"choices\":[{\"delta\":{\"content\":\"héllo …\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"été\"}}]}\n" +
		"data: [DONE]\n"
	raw := []byte(full)

	want := []Event{{Content: "héllo …"}, {Content: "été"}}

	for split := 1; split < len(raw); split++ {
		r := &chunkReader{chunks: [][]byte{raw[:split], raw[split:]}}
		events := collect(t, NewDecoder(r))
		if len(events) != len(want) {
			t.Fatalf("split %d: expected %d events, got %d", split, len(want), len(events))
		}
		for i := range want {
			if events[i] != want[i] {
				t.Fatalf("split %d: event %d = %+v, want %+v", split, i, events[i], want[i])
			}
		}
		if !r.closed {
			t.Fatalf("split %d: body not closed", split)
		}
	}
}

func TestDecoderDoneTerminates(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n" +
		"data: [DONE]\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n"

	r := &chunkReader{chunks: [][]byte{[]byte(stream)}}
	events := collect(t, NewDecoder(r))

	if len(events) != 1 || events[0].Content != "hi" {
		t.Fatalf("expected single 'hi' event, got %v", events)
	}
	if !r.closed {
		t.Error("body not closed after [DONE]")
	}
}

func TestDecoderSkipsMalformedJSON(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
		"data: {not json}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n" +
		"data: [DONE]\n"

	events := collect(t, NewDecoder(io.NopCloser(strings.NewReader(stream))))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Content != "a" || events[1].Content != "b" {
		t.Errorf("unexpected events: %v", events)
	}
}

func TestDecoderSkipsCommentsAndEmptyChoices(t *testing.T) {
	stream := ": keep-alive\n" +
		"\n" +
		"data: {\"choices\":[]}\n" +
		"data: {\"object\":\"ping\"}\n" +
		"data: {\"choices\":[{\"delta\":{}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n" +
		"data: [DONE]\n"

	events := collect(t, NewDecoder(io.NopCloser(strings.NewReader(stream))))
	if len(events) != 1 || events[0].Content != "x" {
		t.Fatalf("expected single 'x' event, got %v", events)
	}
}

func TestDecoderAbortIsCleanTermination(t *testing.T) {
	r := &abortReader{
		prefix: "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n",
		err:    context.Canceled,
	}
	d := NewDecoder(r)

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("first event failed: %v", err)
	}
	if ev.Content != "partial" {
		t.Errorf("expected 'partial', got %q", ev.Content)
	}
	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF on abort, got %v", err)
	}
	if !r.closed {
		t.Error("body not closed on abort")
	}
}

func TestDecoderPropagatesReadErrors(t *testing.T) {
	r := &abortReader{err: io.ErrUnexpectedEOF}
	d := NewDecoder(r)
	if _, err := d.Next(); err != io.ErrUnexpectedEOF {
		t.Fatalf("expected read error to propagate, got %v", err)
	}
	if !r.closed {
		t.Error("body not closed on read error")
	}
}
