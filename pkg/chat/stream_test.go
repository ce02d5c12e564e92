package chat

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func streamOf(s string) (*Stream, *trackingCloser) {
	body := &trackingCloser{Reader: strings.NewReader(s)}
	return newStream(body), body
}

func drain(t *testing.T, s *Stream) []string {
	t.Helper()
	var events []string
	for {
		payload, err := s.Recv()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, payload)
	}
}

func TestStreamRecvPayloads(t *testing.T) {
	s, _ := streamOf("data: one\ndata: two\ndata: [DONE]\n")

	assert.Equal(t, []string{"one", "two"}, drain(t, s))
}

func TestStreamSkipsBlankAndComments(t *testing.T) {
	s, _ := streamOf(": heartbeat\n\ndata: payload\n: another comment\n\ndata: [DONE]\n")

	assert.Equal(t, []string{"payload"}, drain(t, s))
}

func TestStreamDoneTerminatesEarly(t *testing.T) {
	// Bytes after the done marker in the same response must not surface
	s, body := streamOf("data: first\ndata: [DONE]\ndata: after\n")

	assert.Equal(t, []string{"first"}, drain(t, s))
	assert.True(t, body.closed, "done marker must close the body")

	// Subsequent Recv calls stay terminal
	_, err := s.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestStreamBareDoneMarker(t *testing.T) {
	s, _ := streamOf("data: x\n[DONE]\n")

	assert.Equal(t, []string{"x"}, drain(t, s))
}

func TestStreamLenientLineWithoutPrefix(t *testing.T) {
	s, _ := streamOf("{\"raw\":\"chunk\"}\ndata: [DONE]\n")

	assert.Equal(t, []string{"{\"raw\":\"chunk\"}"}, drain(t, s))
}

func TestStreamEndsWithoutDoneMarker(t *testing.T) {
	// A clean close without the sentinel is normal completion
	s, body := streamOf("data: only\n")

	assert.Equal(t, []string{"only"}, drain(t, s))
	assert.True(t, body.closed)
}

func TestStreamEmptyDataLineSkipped(t *testing.T) {
	s, _ := streamOf("data: \ndata: real\ndata: [DONE]\n")

	assert.Equal(t, []string{"real"}, drain(t, s))
}

type failingReader struct {
	data string
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, errors.New("connection reset")
}

func (r *failingReader) Close() error { return nil }

func TestStreamSurfacesReadError(t *testing.T) {
	s := newStream(&failingReader{data: "data: partial\n"})

	payload, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", payload)

	_, err = s.Recv()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestStreamCloseIdempotent(t *testing.T) {
	s, body := streamOf("data: x\n")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, body.closed)
}
