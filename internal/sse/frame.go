// internal/sse/frame.go

// Package sse decodes server-sent-event byte streams incrementally. The
// consumer drives decoding: each Next call pulls just enough bytes off the
// wire to produce one more payload, and the underlying body is closed on
// every exit path.
package sse

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
)

// FrameReader splits a raw byte stream into the payloads of its "data:"
// lines. Blank lines (event separators) and ":" comments are skipped.
// Lines may end in \n, \r\n, or a bare \r; an incomplete trailing line is
// buffered until the next read and flushed when the stream ends.
type FrameReader struct {
	body   io.ReadCloser
	buf    []byte
	read   [4096]byte
	eof    bool
	closed bool
}

func NewFrameReader(body io.ReadCloser) *FrameReader {
	return &FrameReader{body: body}
}

// Next returns the next data payload. It returns io.EOF once the stream is
// exhausted or the read was aborted; aborting is a normal termination, not
// a failure. Any other read error is returned as-is.
func (r *FrameReader) Next() (string, error) {
	if r.closed {
		return "", io.EOF
	}
	for {
		for {
			line, ok := r.nextLine()
			if !ok {
				break
			}
			if payload, ok := classify(line); ok {
				return payload, nil
			}
		}

		if r.eof {
			// Flush whatever partial line is still buffered.
			if len(bytes.TrimSpace(r.buf)) > 0 {
				line := string(r.buf)
				r.buf = nil
				if payload, ok := classify(line); ok {
					r.Close()
					return payload, nil
				}
			}
			r.Close()
			return "", io.EOF
		}

		n, err := r.body.Read(r.read[:])
		if n > 0 {
			r.buf = append(r.buf, r.read[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				r.eof = true
				continue
			}
			r.Close()
			if isAbort(err) {
				return "", io.EOF
			}
			return "", err
		}
	}
}

// Close releases the underlying body. Safe to call more than once.
func (r *FrameReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.body.Close()
}

// nextLine cuts one complete line off the buffer. A \r that is the last
// buffered byte is treated as a terminator immediately; if the peer sent
// \r\n split across chunks the leftover \n shows up as a blank line, which
// classify ignores.
func (r *FrameReader) nextLine() (string, bool) {
	i := bytes.IndexAny(r.buf, "\r\n")
	if i < 0 {
		return "", false
	}
	line := string(r.buf[:i])
	next := i + 1
	if r.buf[i] == '\r' && next < len(r.buf) && r.buf[next] == '\n' {
		next++
	}
	r.buf = r.buf[next:]
	return line, true
}

// classify extracts the payload from a single line. Blank lines, comments,
// non-data fields, and empty payloads report ok=false.
func classify(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}
	if strings.HasPrefix(trimmed, ":") {
		return "", false
	}
	if !strings.HasPrefix(trimmed, "data:") {
		return "", false
	}
	payload := strings.TrimSpace(trimmed[len("data:"):])
	if payload == "" {
		return "", false
	}
	return payload, true
}

// isAbort reports whether a read error means the caller cancelled the
// request rather than the stream genuinely failing.
func isAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
