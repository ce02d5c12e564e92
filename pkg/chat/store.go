package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation. The ID is assigned at
// append time and is the only identity used for later mutation; it is never
// sent over the wire.
type Message struct {
	ID        uuid.UUID `json:"-"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	Timestamp time.Time `json:"-"`
}

// MaxHistory bounds the conversation to its most recent entries. Sixteen
// matches the window the mobile app sends upstream.
const MaxHistory = 16

// Store holds the ordered, bounded conversation history. It is single-writer
// (the active stream) and multi-reader; every mutation broadcasts a fresh
// snapshot to subscribers.
type Store struct {
	mu       sync.Mutex
	messages []Message
	subs     map[int]chan []Message
	nextSub  int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]chan []Message)}
}

// Append adds a finalized user message and an empty assistant placeholder as
// one atomic mutation, then trims to the last MaxHistory entries. Trimming
// happens here, before any network call, so it never races with an in-flight
// stream.
func (s *Store) Append(text, imageURL string) (Message, Message) {
	now := time.Now()
	userMsg := Message{ID: uuid.New(), Role: RoleUser, Content: text, ImageURL: imageURL, Timestamp: now}
	placeholder := Message{ID: uuid.New(), Role: RoleAssistant, Timestamp: now}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, userMsg, placeholder)
	if len(s.messages) > MaxHistory {
		trimmed := make([]Message, MaxHistory)
		copy(trimmed, s.messages[len(s.messages)-MaxHistory:])
		s.messages = trimmed
	}
	s.publishLocked()

	return userMsg, placeholder
}

// AppendToLast appends fragment to the content of the last entry if and only
// if that entry carries the given ID and is an assistant message. Reports
// whether the fragment was applied.
func (s *Store) AppendToLast(id uuid.UUID, fragment string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return false
	}
	last := &s.messages[len(s.messages)-1]
	if last.ID != id || last.Role != RoleAssistant {
		return false
	}

	last.Content += fragment
	s.publishLocked()
	return true
}

// Clear empties the conversation.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.publishLocked()
}

// Len returns the number of messages currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Snapshot returns a copy of the current conversation in order.
func (s *Store) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []Message {
	snap := make([]Message, len(s.messages))
	copy(snap, s.messages)
	return snap
}

// Subscription delivers conversation snapshots after every mutation. The
// channel holds only the most recent snapshot: slow readers skip
// intermediate states but always observe them in order.
type Subscription struct {
	C      <-chan []Message
	cancel func()
}

// Cancel detaches the subscription from the store.
func (sub *Subscription) Cancel() {
	sub.cancel()
}

// Subscribe registers an observer and immediately queues the current
// snapshot.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan []Message, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()

	return &Subscription{
		C: ch,
		cancel: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
		},
	}
}

// publishLocked pushes the current snapshot to every subscriber without
// blocking: a pending stale snapshot is replaced by the newer one.
func (s *Store) publishLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
