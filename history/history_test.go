package history

import (
	"fmt"
	"testing"

	"codesnap/snap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docWithTitle(title string) *snap.Snap {
	s := snap.NewSnap()
	s.Meta.Title = title
	return s
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New(0)
	cur := docWithTitle("v0")
	original := cur.Clone()

	const n = 10
	for i := 1; i <= n; i++ {
		h.Commit(cur)
		cur.Meta.Title = fmt.Sprintf("v%d", i)
		cur.Elements = append(cur.Elements, snap.NewTextElement(float64(i), 0))
	}
	final := cur.Clone()

	for i := 0; i < n; i++ {
		prev, ok := h.Undo(cur)
		require.True(t, ok)
		cur = prev
	}
	assert.Equal(t, original, cur)
	_, ok := h.Undo(cur)
	assert.False(t, ok)

	for i := 0; i < n; i++ {
		next, ok := h.Redo(cur)
		require.True(t, ok)
		cur = next
	}
	assert.Equal(t, final, cur)
	_, ok = h.Redo(cur)
	assert.False(t, ok)
}

func TestCommitClearsFuture(t *testing.T) {
	h := New(0)
	cur := docWithTitle("a")
	h.Commit(cur)
	cur.Meta.Title = "b"

	prev, ok := h.Undo(cur)
	require.True(t, ok)
	assert.Equal(t, 1, h.FutureLen())

	h.Commit(prev)
	assert.Equal(t, 0, h.FutureLen())
	assert.False(t, h.CanRedo())
}

func TestLimitEvictsOldestFirst(t *testing.T) {
	h := New(DefaultLimit)
	cur := docWithTitle("0")
	for i := 1; i <= 75; i++ {
		h.Commit(cur)
		cur = docWithTitle(fmt.Sprint(i))
		assert.LessOrEqual(t, h.PastLen(), DefaultLimit)
	}
	assert.Equal(t, DefaultLimit, h.PastLen())

	var titles []string
	for h.CanUndo() {
		prev, _ := h.Undo(cur)
		cur = prev
		titles = append(titles, cur.Meta.Title)
	}
	require.Len(t, titles, DefaultLimit)
	assert.Equal(t, "74", titles[0])
	// entries "0".."24" were evicted
	assert.Equal(t, "25", titles[len(titles)-1])
}

func TestSnapshotsAreImmutable(t *testing.T) {
	h := New(0)
	cur := docWithTitle("kept")
	cur.Elements = append(cur.Elements, snap.NewCodeElement(0, 0))
	h.Commit(cur)

	cur.Meta.Title = "mutated"
	cur.Elements[0].Code.Code = "changed"
	cur.Elements[0].X = 500

	// Mutating what Undo returns must not alter the redo copy either.
	prev, _ := h.Undo(cur)
	assert.Equal(t, "kept", prev.Meta.Title)
	assert.Equal(t, 0.0, prev.Elements[0].X)
	prev.Meta.Title = "scribbled"
	next, _ := h.Redo(prev)
	assert.Equal(t, "mutated", next.Meta.Title)
	assert.Equal(t, "changed", next.Elements[0].Code.Code)
}

func TestReset(t *testing.T) {
	h := New(3)
	h.Commit(docWithTitle("x"))
	h.Reset()
	assert.False(t, h.CanUndo())
	_, ok := h.Discard()
	assert.False(t, ok)
}

func TestDiscardLeavesRedoAlone(t *testing.T) {
	h := New(0)
	h.Commit(docWithTitle("a"))
	h.Commit(docWithTitle("b"))
	prev, _ := h.Undo(docWithTitle("c"))
	require.Equal(t, "b", prev.Meta.Title)

	got, ok := h.Discard()
	require.True(t, ok)
	assert.Equal(t, "a", got.Meta.Title)
	assert.Equal(t, 0, h.PastLen())
	assert.Equal(t, 1, h.FutureLen())

	h.Commit(docWithTitle("d"))
	got, _ = h.Discard()
	assert.Equal(t, "d", got.Meta.Title)
	assert.False(t, h.CanRedo(), "commit already dropped redo")
}
