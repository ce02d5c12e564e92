package chat

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendPair(t *testing.T) {
	store := NewStore()

	userMsg, placeholder := store.Append("hello", "")

	require.Equal(t, 2, store.Len())
	assert.Equal(t, RoleUser, userMsg.Role)
	assert.Equal(t, "hello", userMsg.Content)
	assert.Equal(t, RoleAssistant, placeholder.Role)
	assert.Empty(t, placeholder.Content)
	assert.NotEqual(t, uuid.Nil, userMsg.ID)
	assert.NotEqual(t, uuid.Nil, placeholder.ID)

	snap := store.Snapshot()
	assert.Equal(t, userMsg.ID, snap[0].ID)
	assert.Equal(t, placeholder.ID, snap[1].ID)
}

func TestStoreAppendKeepsImageURL(t *testing.T) {
	store := NewStore()

	userMsg, _ := store.Append("look at this", "data:image/png;base64,AAAA")

	assert.Equal(t, "data:image/png;base64,AAAA", userMsg.ImageURL)
	assert.Equal(t, userMsg.ImageURL, store.Snapshot()[0].ImageURL)
}

func TestStoreTrimsToMaxHistory(t *testing.T) {
	store := NewStore()

	for i := 0; i < 20; i++ {
		store.Append(fmt.Sprintf("msg %d", i), "")
	}

	require.Equal(t, MaxHistory, store.Len())

	// The newest pair survived the trim
	snap := store.Snapshot()
	assert.Equal(t, "msg 19", snap[len(snap)-2].Content)
	assert.Equal(t, RoleAssistant, snap[len(snap)-1].Role)
}

func TestStoreAppendLength(t *testing.T) {
	store := NewStore()

	for i := 0; i < 12; i++ {
		prev := store.Len()
		store.Append("x", "")
		want := prev + 2
		if want > MaxHistory {
			want = MaxHistory
		}
		assert.Equal(t, want, store.Len())
	}
}

func TestStoreAppendToLast(t *testing.T) {
	store := NewStore()
	_, placeholder := store.Append("question", "")

	require.True(t, store.AppendToLast(placeholder.ID, "part one"))
	require.True(t, store.AppendToLast(placeholder.ID, ", part two"))

	snap := store.Snapshot()
	assert.Equal(t, "part one, part two", snap[len(snap)-1].Content)
}

func TestStoreAppendToLastRejectsStaleID(t *testing.T) {
	store := NewStore()
	_, stale := store.Append("first", "")

	// A new turn supersedes the old placeholder
	_, current := store.Append("second", "")

	assert.False(t, store.AppendToLast(stale.ID, "late fragment"))
	assert.True(t, store.AppendToLast(current.ID, "fresh"))

	snap := store.Snapshot()
	assert.Equal(t, "fresh", snap[len(snap)-1].Content)
	assert.Empty(t, snap[1].Content, "stale placeholder must stay untouched")
}

func TestStoreAppendToLastOnEmptyStore(t *testing.T) {
	store := NewStore()
	assert.False(t, store.AppendToLast(uuid.New(), "x"))
}

func TestStoreClearThenSend(t *testing.T) {
	store := NewStore()
	for i := 0; i < 7; i++ {
		store.Append("x", "")
	}

	store.Clear()
	require.Equal(t, 0, store.Len())

	store.Append("fresh start", "")
	assert.Equal(t, 2, store.Len())
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	store := NewStore()
	store.Append("original", "")

	snap := store.Snapshot()
	snap[0].Content = "mutated"

	assert.Equal(t, "original", store.Snapshot()[0].Content)
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore()
	store.Append("before", "")

	sub := store.Subscribe()
	defer sub.Cancel()

	// Initial snapshot is queued at subscription time
	snap := <-sub.C
	require.Len(t, snap, 2)
	assert.Equal(t, "before", snap[0].Content)

	store.Append("after", "")
	snap = <-sub.C
	assert.Len(t, snap, 4)
}

func TestStoreSubscribeMostRecentWins(t *testing.T) {
	store := NewStore()
	sub := store.Subscribe()
	defer sub.Cancel()

	// Drain the initial snapshot, then mutate several times without reading
	<-sub.C
	_, placeholder := store.Append("q", "")
	store.AppendToLast(placeholder.ID, "a")
	store.AppendToLast(placeholder.ID, "b")
	store.AppendToLast(placeholder.ID, "c")

	// Only the latest state is pending
	snap := <-sub.C
	assert.Equal(t, "abc", snap[len(snap)-1].Content)

	select {
	case extra := <-sub.C:
		t.Fatalf("Expected no further snapshots, got %d messages", len(extra))
	default:
	}
}

func TestStoreUnsubscribe(t *testing.T) {
	store := NewStore()
	sub := store.Subscribe()
	<-sub.C
	sub.Cancel()

	store.Append("x", "")

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Fatal("Cancelled subscription must not receive snapshots")
		}
	default:
	}
}
