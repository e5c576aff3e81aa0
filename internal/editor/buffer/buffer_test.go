package buffer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/quillcli/quill/internal/keys"
)

// TestNewBufferHasOneEmptyLine verifies the buffer invariant on creation.
func TestNewBufferHasOneEmptyLine(t *testing.T) {
	b := New()

	assert.Equal(t, []string{""}, b.Lines())
	assert.Equal(t, "", b.Text())
	row, col := b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
}

// TestSetText verifies content replacement, the empty-string case, and
// cursor clamping into the new content.
func TestSetText(t *testing.T) {
	b := New()

	b.SetText("one\ntwo")
	assert.Equal(t, []string{"one", "two"}, b.Lines())
	assert.Equal(t, "one\ntwo", b.Text())

	b.MoveToOffset(7)
	b.SetText("ab")
	assert.Equal(t, []string{"ab"}, b.Lines())
	row, col := b.Cursor()
	assert.Equal(t, 0, row)
	assert.LessOrEqual(t, col, 2)

	b.SetText("")
	assert.Equal(t, []string{""}, b.Lines())
}

// TestMoveToOffset verifies offset-to-position conversion including
// clamping past the end.
func TestMoveToOffset(t *testing.T) {
	b := New()
	b.SetText("ab\ncdef")

	b.MoveToOffset(0)
	row, col := b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	// Offset 2 is the end of the first line, before the newline.
	b.MoveToOffset(2)
	row, col = b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 2, col)

	b.MoveToOffset(3)
	row, col = b.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)

	b.MoveToOffset(999)
	row, col = b.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 4, col)

	b.MoveToOffset(-5)
	row, col = b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
}

// TestVerticalMovementKeepsPreferredColumn verifies that crossing a short
// line and returning restores the original column.
func TestVerticalMovementKeepsPreferredColumn(t *testing.T) {
	b := New()
	b.SetText("longline\nab\nanother")
	b.MoveToOffset(6)

	b.MoveDown()
	row, col := b.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, col)

	b.MoveDown()
	row, col = b.Cursor()
	assert.Equal(t, 2, row)
	assert.Equal(t, 6, col)

	b.MoveUp()
	b.MoveUp()
	row, col = b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 6, col)
}

// TestVerticalMovementAtEdges verifies that moving past the first or last
// row is a no-op.
func TestVerticalMovementAtEdges(t *testing.T) {
	b := New()
	b.SetText("a\nb")

	b.MoveUp()
	row, _ := b.Cursor()
	assert.Equal(t, 0, row)

	b.MoveDown()
	b.MoveDown()
	row, _ = b.Cursor()
	assert.Equal(t, 1, row)
}

// TestInsert verifies insertion at the cursor, including multi-line
// insertions.
func TestInsert(t *testing.T) {
	b := New()
	b.SetText("ad")
	b.MoveToOffset(1)

	b.Insert("bc")
	assert.Equal(t, "abcd", b.Text())
	_, col := b.Cursor()
	assert.Equal(t, 3, col)

	b.Insert("x\ny")
	assert.Equal(t, []string{"abcx", "yd"}, b.Lines())
	row, col := b.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)
}

// TestNewline verifies splitting a line at the cursor.
func TestNewline(t *testing.T) {
	b := New()
	b.SetText("abcd")
	b.MoveToOffset(2)

	b.Newline()

	assert.Equal(t, []string{"ab", "cd"}, b.Lines())
	row, col := b.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

// TestDel verifies forward deletion, the line join at a line end, and the
// no-op at the buffer end.
func TestDel(t *testing.T) {
	b := New()
	b.SetText("ab\ncd")
	b.MoveToOffset(2)

	b.Del()
	assert.Equal(t, []string{"abcd"}, b.Lines())

	b.MoveToOffset(4)
	b.Del()
	assert.Equal(t, []string{"abcd"}, b.Lines())
}

// TestDeleteBack verifies backward deletion, the join at column 0, and
// the no-op at the buffer start.
func TestDeleteBack(t *testing.T) {
	b := New()
	b.SetText("ab\ncd")
	b.MoveToOffset(3)

	b.DeleteBack()
	assert.Equal(t, []string{"abcd"}, b.Lines())
	_, col := b.Cursor()
	assert.Equal(t, 2, col)

	b.MoveToOffset(0)
	b.DeleteBack()
	assert.Equal(t, []string{"abcd"}, b.Lines())
}

// TestReplaceRangeByOffset verifies replacement, deletion, clamping, and
// inverted-range normalization.
func TestReplaceRangeByOffset(t *testing.T) {
	t.Run("replaces a range", func(t *testing.T) {
		b := New()
		b.SetText("hello world")

		b.ReplaceRangeByOffset(0, 5, "goodbye")

		assert.Equal(t, "goodbye world", b.Text())
		_, col := b.Cursor()
		assert.Equal(t, 7, col)
	})

	t.Run("deletion leaves cursor at start", func(t *testing.T) {
		b := New()
		b.SetText("hello world")

		b.ReplaceRangeByOffset(5, 11, "")

		assert.Equal(t, "hello", b.Text())
		_, col := b.Cursor()
		assert.Equal(t, 5, col)
	})

	t.Run("range across a newline joins lines", func(t *testing.T) {
		b := New()
		b.SetText("ab\ncd")

		b.ReplaceRangeByOffset(1, 4, "")

		assert.Equal(t, []string{"ad"}, b.Lines())
	})

	t.Run("out of range offsets clamp", func(t *testing.T) {
		b := New()
		b.SetText("abc")

		b.ReplaceRangeByOffset(-5, 99, "x")

		assert.Equal(t, "x", b.Text())
	})

	t.Run("inverted range is normalized", func(t *testing.T) {
		b := New()
		b.SetText("abcdef")

		b.ReplaceRangeByOffset(4, 2, "")

		assert.Equal(t, "abef", b.Text())
	})
}

// TestCheckpointUndo verifies that Undo restores both content and cursor
// from the most recent checkpoint.
func TestCheckpointUndo(t *testing.T) {
	b := New()
	b.SetText("hello")
	b.MoveToOffset(3)

	b.Checkpoint()
	b.ReplaceRangeByOffset(0, 5, "changed")

	require.True(t, b.Undo())
	assert.Equal(t, "hello", b.Text())
	row, col := b.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 3, col)

	assert.False(t, b.Undo())
}

// TestUndoDepthIsBounded verifies that the undo stack drops the oldest
// snapshots beyond its cap.
func TestUndoDepthIsBounded(t *testing.T) {
	b := New()
	for i := 0; i < maxUndoDepth+20; i++ {
		b.SetText(fmt.Sprintf("state %d", i))
		b.Checkpoint()
	}

	undone := 0
	for b.Undo() {
		undone++
	}
	assert.Equal(t, maxUndoDepth, undone)
}

// TestHandleKey verifies the insert-mode key handling: printable input,
// editing keys, and the keys the buffer deliberately does not own.
func TestHandleKey(t *testing.T) {
	t.Run("printable input inserts", func(t *testing.T) {
		b := New()

		assert.True(t, b.HandleKey(keys.Event{Sequence: "a"}))
		assert.True(t, b.HandleKey(keys.Event{Sequence: "b"}))
		assert.Equal(t, "ab", b.Text())
	})

	t.Run("backspace and delete", func(t *testing.T) {
		b := New()
		b.SetText("abc")
		b.MoveToOffset(2)

		assert.True(t, b.HandleKey(keys.Event{Name: "backspace"}))
		assert.Equal(t, "ac", b.Text())

		b.MoveToOffset(0)
		assert.True(t, b.HandleKey(keys.Event{Name: "delete"}))
		assert.Equal(t, "c", b.Text())
	})

	t.Run("horizontal arrows and home end", func(t *testing.T) {
		b := New()
		b.SetText("abc")
		b.MoveToOffset(1)

		assert.True(t, b.HandleKey(keys.Event{Name: "right"}))
		_, col := b.Cursor()
		assert.Equal(t, 2, col)

		assert.True(t, b.HandleKey(keys.Event{Name: "left"}))
		_, col = b.Cursor()
		assert.Equal(t, 1, col)

		assert.True(t, b.HandleKey(keys.Event{Name: "end"}))
		_, col = b.Cursor()
		assert.Equal(t, 3, col)

		assert.True(t, b.HandleKey(keys.Event{Name: "home"}))
		_, col = b.Cursor()
		assert.Equal(t, 0, col)
	})

	t.Run("modified return inserts a line break", func(t *testing.T) {
		b := New()
		b.SetText("ab")
		b.MoveToOffset(1)

		assert.True(t, b.HandleKey(keys.Event{Name: "return", Ctrl: true}))
		assert.Equal(t, []string{"a", "b"}, b.Lines())
	})

	t.Run("unowned keys are unhandled", func(t *testing.T) {
		b := New()
		b.SetText("ab")

		assert.False(t, b.HandleKey(keys.Event{Name: "return"}))
		assert.False(t, b.HandleKey(keys.Event{Name: "tab"}))
		assert.False(t, b.HandleKey(keys.Event{Name: "up"}))
		assert.False(t, b.HandleKey(keys.Event{Sequence: "v", Ctrl: true}))
		assert.Equal(t, "ab", b.Text())
	})
}

// TestBufferInvariantsProperty runs random edit sequences and checks the
// structural invariants: at least one line, cursor in bounds, and Text
// consistent with Lines.
func TestBufferInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := New()
		b.SetText(rapid.StringMatching(`[a-zA-Z0-9 \n]{0,40}`).Draw(t, "initial"))

		numOps := rapid.IntRange(1, 20).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0:
				b.Insert(rapid.StringMatching(`[a-z \n]{0,5}`).Draw(t, "text"))
			case 1:
				b.Del()
			case 2:
				b.DeleteBack()
			case 3:
				b.MoveToOffset(rapid.IntRange(-2, 50).Draw(t, "offset"))
			case 4:
				start := rapid.IntRange(0, 50).Draw(t, "start")
				end := rapid.IntRange(0, 50).Draw(t, "end")
				b.ReplaceRangeByOffset(start, end, rapid.StringMatching(`[a-z]{0,4}`).Draw(t, "repl"))
			case 5:
				b.Newline()
			}

			require.GreaterOrEqual(t, len(b.Lines()), 1)
			row, col := b.Cursor()
			require.GreaterOrEqual(t, row, 0)
			require.Less(t, row, len(b.Lines()))
			require.GreaterOrEqual(t, col, 0)
			require.LessOrEqual(t, col, len([]rune(b.Lines()[row])))
			require.Equal(t, strings.Join(b.Lines(), "\n"), b.Text())
		}
	})
}
