package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
)

// ErrStreamInProgress is returned when Send is called while a previous
// stream is still active.
var ErrStreamInProgress = errors.New("a stream is already in progress")

// Session serializes sends over one conversation: at most one stream mutates
// the store at a time. UI layers subscribe to the store for snapshots and
// call Send from their own goroutine.
type Session struct {
	store     *Store
	client    *Client
	streaming atomic.Bool
}

func NewSession(store *Store, client *Client) *Session {
	return &Session{store: store, client: client}
}

// Store exposes the conversation for subscription.
func (s *Session) Store() *Store {
	return s.store
}

// IsStreaming reports whether a send is currently active.
func (s *Session) IsStreaming() bool {
	return s.streaming.Load()
}

// Send appends the user turn plus an assistant placeholder, streams the
// completion, and folds deltas into the placeholder. Blank input is a no-op.
// A second Send while one is active returns ErrStreamInProgress without
// touching the store. On failure the history up to that point is kept; the
// caller decides how to surface the error, and nothing here retries.
func (s *Session) Send(ctx context.Context, text, imageURL string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if !s.streaming.CompareAndSwap(false, true) {
		return ErrStreamInProgress
	}
	defer s.streaming.Store(false)

	_, placeholder := s.store.Append(text, imageURL)

	stream, err := s.client.StreamChat(ctx, s.store.Snapshot())
	if err != nil {
		return err
	}
	defer stream.Close()

	acc := NewAccumulator(s.store, placeholder.ID)
	for {
		raw, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		acc.OnEvent(raw)
	}
}
