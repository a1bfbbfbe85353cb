package sse

import (
	"io"
	"strings"
	"testing"
)

func collectFrames(t *testing.T, r *FrameReader) []string {
	t.Helper()
	var payloads []string
	for {
		p, err := r.Next()
		if err == io.EOF {
			return payloads
		}
		if err != nil {
			t.Fatalf("unexpected frame error: %v", err)
		}
		payloads = append(payloads, p)
	}
}

func TestFrameReaderLineTerminators(t *testing.T) {
	cases := []struct {
		name   string
		stream string
	}{
		{"lf", "data: one\ndata: two\n"},
		{"crlf", "data: one\r\ndata: two\r\n"},
		{"cr", "data: one\rdata: two\r"},
		{"mixed", "data: one\r\ndata: two\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewFrameReader(io.NopCloser(strings.NewReader(tc.stream)))
			got := collectFrames(t, r)
			if len(got) != 2 || got[0] != "one" || got[1] != "two" {
				t.Fatalf("got %v, want [one two]", got)
			}
		})
	}
}

func TestFrameReaderCRLFSplitAcrossChunks(t *testing.T) {
	r := NewFrameReader(&chunkReader{chunks: [][]byte{
		[]byte("data: one\r"),
		[]byte("\ndata: two\n"),
	}})
	got := collectFrames(t, r)
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("got %v, want [one two]", got)
	}
}

func TestFrameReaderFlushesTrailingLine(t *testing.T) {
	r := NewFrameReader(io.NopCloser(strings.NewReader("data: tail")))
	got := collectFrames(t, r)
	if len(got) != 1 || got[0] != "tail" {
		t.Fatalf("got %v, want [tail]", got)
	}
}

func TestFrameReaderSkipsNonDataLines(t *testing.T) {
	stream := "event: log\n" +
		": comment\n" +
		"\n" +
		"data:\n" +
		"data: payload\n"
	r := NewFrameReader(io.NopCloser(strings.NewReader(stream)))
	got := collectFrames(t, r)
	if len(got) != 1 || got[0] != "payload" {
		t.Fatalf("got %v, want [payload]", got)
	}
}

func TestFrameReaderCloseIdempotent(t *testing.T) {
	body := &chunkReader{}
	r := NewFrameReader(body)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after close, got %v", err)
	}
}
