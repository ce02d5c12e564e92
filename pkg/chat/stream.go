package chat

import (
	"bufio"
	"io"
	"strings"
)

// SSE wire constants shared with the gateway.
const (
	dataPrefix    = "data: "
	commentPrefix = ":"
	doneMarker    = "[DONE]"
)

// Stream is a lazy, finite sequence of raw server-sent payloads read off one
// chat response. Abandoning a stream early must be followed by Close so the
// underlying connection is released.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
	closed  bool
}

func newStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &Stream{body: body, scanner: scanner}
}

// Recv returns the next raw payload. io.EOF signals normal end of stream:
// the done marker, or the body closing cleanly without one (providers are
// inconsistent about the terminal frame, so a clean close counts as
// completion). A mid-stream read failure is returned as-is; whatever was
// accumulated so far stands.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}

		if strings.HasPrefix(line, dataPrefix) {
			payload := strings.TrimSpace(line[len(dataPrefix):])
			if payload == doneMarker {
				s.finish()
				return "", io.EOF
			}
			if payload == "" {
				continue
			}
			return payload, nil
		}

		if trimmed == doneMarker {
			s.finish()
			return "", io.EOF
		}

		// Tolerate providers that omit the data prefix
		return trimmed, nil
	}

	err := s.scanner.Err()
	s.finish()
	if err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *Stream) finish() {
	s.done = true
	s.Close()
}

// Close releases the underlying connection. Safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
