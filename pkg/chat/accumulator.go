package chat

import (
	"encoding/json"

	"github.com/google/uuid"
)

// DeltaKind classifies what a raw payload yielded. Malformed and Empty are
// both absorbed without aborting the stream; the distinction exists so
// callers can tell a heartbeat apart from garbage.
type DeltaKind int

const (
	// DeltaMalformed means the payload was not parseable JSON
	DeltaMalformed DeltaKind = iota
	// DeltaEmpty means the payload parsed but carried no content fragment
	DeltaEmpty
	// DeltaContent means a non-empty fragment was extracted
	DeltaContent
)

// Delta is the parsed result of one stream event.
type Delta struct {
	Kind    DeltaKind
	Content string
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ExtractDelta navigates choices[0].delta.content of a raw payload. Every
// failure mode (unparsable JSON, missing keys, empty choices) yields a
// fragment-free Delta rather than an error.
func ExtractDelta(raw string) Delta {
	var chunk streamChunk
	if err := json.Unmarshal([]byte(raw), &chunk); err != nil {
		return Delta{Kind: DeltaMalformed}
	}
	if len(chunk.Choices) == 0 {
		return Delta{Kind: DeltaEmpty}
	}

	content := chunk.Choices[0].Delta.Content
	if content == nil || *content == "" {
		return Delta{Kind: DeltaEmpty}
	}

	return Delta{Kind: DeltaContent, Content: *content}
}

// Accumulator folds streamed deltas into one assistant placeholder. The
// final content is the ordered concatenation of every non-empty fragment;
// malformed payloads in between are skipped without effect.
type Accumulator struct {
	store  *Store
	target uuid.UUID
}

// NewAccumulator binds the accumulator to the placeholder message it
// mutates.
func NewAccumulator(store *Store, target uuid.UUID) *Accumulator {
	return &Accumulator{store: store, target: target}
}

// OnEvent extracts the delta from raw and, when a fragment is present,
// appends it to the target message.
func (a *Accumulator) OnEvent(raw string) Delta {
	delta := ExtractDelta(raw)
	if delta.Kind == DeltaContent {
		a.store.AppendToLast(a.target, delta.Content)
	}
	return delta
}
