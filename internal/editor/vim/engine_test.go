package vim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcli/quill/internal/editor/buffer"
	"github.com/quillcli/quill/internal/keys"
)

// newTestEngine creates an engine in NORMAL mode over a buffer holding
// text, cursor at offset 0.
func newTestEngine(text string) (*Engine, *buffer.Buffer) {
	buf := buffer.New()
	buf.SetText(text)
	buf.MoveToOffset(0)
	return New(buf), buf
}

// press feeds each rune of seq to the engine as its own key event.
func press(e *Engine, seq string) {
	for _, r := range seq {
		e.HandleKey(keys.Event{Sequence: string(r)})
	}
}

func pressKey(e *Engine, name string) bool {
	return e.HandleKey(keys.Event{Name: name})
}

// TestEngineStartsEnabledInNormal verifies initial engine state.
func TestEngineStartsEnabledInNormal(t *testing.T) {
	e, _ := newTestEngine("")

	assert.True(t, e.Enabled())
	assert.Equal(t, ModeNormal, e.Mode())
	assert.Equal(t, OpNone, e.Pending())
	assert.Equal(t, 0, e.Count())
}

// TestEngineDisabledPassesKeysThrough verifies that a disabled engine
// reports every key unhandled and mutates nothing.
func TestEngineDisabledPassesKeysThrough(t *testing.T) {
	e, buf := newTestEngine("hello")
	e.SetEnabled(false)

	assert.False(t, e.HandleKey(keys.Event{Sequence: "x"}))
	assert.False(t, pressKey(e, "escape"))
	assert.Equal(t, "hello", buf.Text())
}

// TestHorizontalMotion verifies h and l with counts and the NORMAL-mode
// column bound.
func TestHorizontalMotion(t *testing.T) {
	e, buf := newTestEngine("hello world")

	press(e, "3l")
	_, col := buf.Cursor()
	assert.Equal(t, 3, col)

	// l clamps at the last character, not one past it.
	press(e, "99l")
	_, col = buf.Cursor()
	assert.Equal(t, 10, col)

	press(e, "4h")
	_, col = buf.Cursor()
	assert.Equal(t, 6, col)

	press(e, "99h")
	_, col = buf.Cursor()
	assert.Equal(t, 0, col)
}

// TestCountedLeftMotion verifies that 3h from column 5 lands on column 2.
func TestCountedLeftMotion(t *testing.T) {
	e, buf := newTestEngine("hello world")
	buf.MoveToOffset(5)

	press(e, "3h")

	_, col := buf.Cursor()
	assert.Equal(t, 2, col)
}

// TestHorizontalMotionWrapsLines verifies that h at column 0 wraps to the
// previous line end and l at the line end wraps to the next line start.
func TestHorizontalMotionWrapsLines(t *testing.T) {
	e, buf := newTestEngine("ab\ncd")
	buf.MoveToOffset(3) // row 1, col 0

	press(e, "h")
	row, col := buf.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 1, col)

	press(e, "l")
	row, col = buf.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

// TestVerticalMotion verifies j and k with counts.
func TestVerticalMotion(t *testing.T) {
	e, buf := newTestEngine("one\ntwo\nthree")

	press(e, "2j")
	row, _ := buf.Cursor()
	assert.Equal(t, 2, row)

	press(e, "k")
	row, _ = buf.Cursor()
	assert.Equal(t, 1, row)

	// Moving past the edges is a no-op.
	press(e, "9k")
	row, _ = buf.Cursor()
	assert.Equal(t, 0, row)
}

// TestVerticalMotionClampsColumn verifies that landing on a shorter line
// pulls the cursor back onto its last character.
func TestVerticalMotionClampsColumn(t *testing.T) {
	e, buf := newTestEngine("abcdef\nxy\nlonger")
	buf.MoveToOffset(5)

	press(e, "j")
	row, col := buf.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)
}

// TestArrowKeysActAsMotions verifies that arrow keys behave as h/j/k/l in
// NORMAL mode.
func TestArrowKeysActAsMotions(t *testing.T) {
	e, buf := newTestEngine("ab\ncd")

	assert.True(t, pressKey(e, "right"))
	_, col := buf.Cursor()
	assert.Equal(t, 1, col)

	assert.True(t, pressKey(e, "down"))
	row, _ := buf.Cursor()
	assert.Equal(t, 1, row)

	assert.True(t, pressKey(e, "up"))
	assert.True(t, pressKey(e, "left"))
	row, col = buf.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
}

// TestLineMotions verifies 0, $, and ^.
func TestLineMotions(t *testing.T) {
	e, buf := newTestEngine("  hi there")
	buf.MoveToOffset(4)

	press(e, "$")
	_, col := buf.Cursor()
	assert.Equal(t, 9, col)

	press(e, "0")
	_, col = buf.Cursor()
	assert.Equal(t, 0, col)

	press(e, "^")
	_, col = buf.Cursor()
	assert.Equal(t, 2, col)
}

// TestZeroIsCountDigitAfterNonzero verifies that 0 extends a pending
// count instead of moving to the line start.
func TestZeroIsCountDigitAfterNonzero(t *testing.T) {
	e, buf := newTestEngine("abcdefghijklmnop")

	press(e, "1")
	assert.Equal(t, 1, e.Count())
	press(e, "0")
	assert.Equal(t, 10, e.Count())

	press(e, "l")
	_, col := buf.Cursor()
	assert.Equal(t, 10, col)
	assert.Equal(t, 0, e.Count())
}

// TestWordMotionKeys verifies w, b, and e against a two-word line.
func TestWordMotionKeys(t *testing.T) {
	e, buf := newTestEngine("hello world")

	press(e, "w")
	_, col := buf.Cursor()
	assert.Equal(t, 6, col)

	press(e, "b")
	_, col = buf.Cursor()
	assert.Equal(t, 0, col)

	press(e, "e")
	_, col = buf.Cursor()
	assert.Equal(t, 4, col)
}

// TestCountedWordMotion verifies that a count repeats a word motion and
// stops early at the buffer edge.
func TestCountedWordMotion(t *testing.T) {
	e, buf := newTestEngine("one two three four")

	press(e, "2w")
	_, col := buf.Cursor()
	assert.Equal(t, 8, col)

	// More steps than words left: stops at the final word boundary.
	press(e, "9w")
	row, col := buf.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 17, col)
}

// TestGotoMotions verifies G, counted G, and gg.
func TestGotoMotions(t *testing.T) {
	e, buf := newTestEngine("one\ntwo\nthree")

	press(e, "G")
	row, col := buf.Cursor()
	assert.Equal(t, 2, row)
	assert.Equal(t, 0, col)

	press(e, "gg")
	row, col = buf.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)

	press(e, "2G")
	row, _ = buf.Cursor()
	assert.Equal(t, 1, row)

	// A count beyond the last line clamps.
	press(e, "99G")
	row, _ = buf.Cursor()
	assert.Equal(t, 2, row)
}

// TestInsertEntryCommands verifies the cursor placement of i, I, a, A, o,
// and O, and that each enters INSERT mode.
func TestInsertEntryCommands(t *testing.T) {
	t.Run("i enters insert at cursor", func(t *testing.T) {
		e, buf := newTestEngine("ab")
		buf.MoveToOffset(1)

		press(e, "i")

		assert.Equal(t, ModeInsert, e.Mode())
		_, col := buf.Cursor()
		assert.Equal(t, 1, col)
	})

	t.Run("I moves to first non-blank", func(t *testing.T) {
		e, buf := newTestEngine("  hi")
		buf.MoveToOffset(3)

		press(e, "I")

		assert.Equal(t, ModeInsert, e.Mode())
		_, col := buf.Cursor()
		assert.Equal(t, 2, col)
	})

	t.Run("a appends after cursor", func(t *testing.T) {
		e, buf := newTestEngine("ab")

		press(e, "a")

		assert.Equal(t, ModeInsert, e.Mode())
		_, col := buf.Cursor()
		assert.Equal(t, 1, col)
	})

	t.Run("A appends at line end", func(t *testing.T) {
		e, buf := newTestEngine("hello")

		press(e, "A")

		assert.Equal(t, ModeInsert, e.Mode())
		_, col := buf.Cursor()
		assert.Equal(t, 5, col)
	})

	t.Run("o opens a line below", func(t *testing.T) {
		e, buf := newTestEngine("ab\ncd")

		press(e, "o")

		assert.Equal(t, ModeInsert, e.Mode())
		assert.Equal(t, []string{"ab", "", "cd"}, buf.Lines())
		row, col := buf.Cursor()
		assert.Equal(t, 1, row)
		assert.Equal(t, 0, col)
	})

	t.Run("O opens a line above", func(t *testing.T) {
		e, buf := newTestEngine("ab\ncd")
		buf.MoveToOffset(3)

		press(e, "O")

		assert.Equal(t, ModeInsert, e.Mode())
		assert.Equal(t, []string{"ab", "", "cd"}, buf.Lines())
		row, _ := buf.Cursor()
		assert.Equal(t, 1, row)
	})
}

// TestEscapeLeavesInsertSteppingLeft verifies that Escape returns to
// NORMAL and the cursor lands one column left of where insertion ended.
func TestEscapeLeavesInsertSteppingLeft(t *testing.T) {
	e, buf := newTestEngine("hi")
	buf.MoveToOffset(2)
	e.SetMode(ModeInsert)

	assert.True(t, pressKey(e, "escape"))

	assert.Equal(t, ModeNormal, e.Mode())
	_, col := buf.Cursor()
	assert.Equal(t, 1, col)
}

// TestEscapeAtColumnZeroStays verifies that leaving INSERT at column 0
// does not wrap to the previous line.
func TestEscapeAtColumnZeroStays(t *testing.T) {
	e, buf := newTestEngine("ab\ncd")
	buf.MoveToOffset(3)
	e.SetMode(ModeInsert)

	pressKey(e, "escape")

	row, col := buf.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

// TestInsertModePassthrough verifies that printable keys in INSERT mode
// reach the buffer while deferred keys do not.
func TestInsertModePassthrough(t *testing.T) {
	e, buf := newTestEngine("")
	e.SetMode(ModeInsert)

	assert.True(t, e.HandleKey(keys.Event{Sequence: "h"}))
	assert.True(t, e.HandleKey(keys.Event{Sequence: "i"}))
	assert.Equal(t, "hi", buf.Text())

	// Reserved for the host pipeline.
	assert.False(t, pressKey(e, "tab"))
	assert.False(t, pressKey(e, "up"))
	assert.False(t, pressKey(e, "down"))
	assert.False(t, e.HandleKey(keys.Event{Sequence: "v", Ctrl: true}))
	assert.Equal(t, "hi", buf.Text())
}

// TestSubmitOnBareReturn verifies the submit path from INSERT mode: the
// callback receives the content and the buffer resets.
func TestSubmitOnBareReturn(t *testing.T) {
	e, buf := newTestEngine("hello")
	buf.MoveToOffset(5)
	e.SetMode(ModeInsert)

	var submitted string
	e.SetOnSubmit(func(text string) { submitted = text })

	assert.True(t, pressKey(e, "return"))

	assert.Equal(t, "hello", submitted)
	assert.Equal(t, "", buf.Text())
	row, col := buf.Cursor()
	assert.Equal(t, 0, row)
	assert.Equal(t, 0, col)
}

// TestSubmitEmptyBufferIsUnhandled verifies that a bare return on an
// empty buffer defers to the host.
func TestSubmitEmptyBufferIsUnhandled(t *testing.T) {
	e, _ := newTestEngine("")
	e.SetMode(ModeInsert)
	e.SetOnSubmit(func(string) { t.Fatal("must not submit empty content") })

	assert.False(t, pressKey(e, "return"))
}

// TestSubmitWithoutCallbackIsSwallowed verifies that a bare return with
// no registered callback is handled without touching the buffer.
func TestSubmitWithoutCallbackIsSwallowed(t *testing.T) {
	e, buf := newTestEngine("hello")
	e.SetMode(ModeInsert)

	assert.True(t, pressKey(e, "return"))
	assert.Equal(t, "hello", buf.Text())
}

// TestModifiedReturnInsertsNewline verifies that ctrl+return in INSERT
// mode inserts a line break instead of submitting.
func TestModifiedReturnInsertsNewline(t *testing.T) {
	e, buf := newTestEngine("ab")
	buf.MoveToOffset(1)
	e.SetMode(ModeInsert)
	e.SetOnSubmit(func(string) { t.Fatal("must not submit") })

	assert.True(t, e.HandleKey(keys.Event{Name: "return", Ctrl: true}))
	assert.Equal(t, []string{"a", "b"}, buf.Lines())
}

// TestPendingOperatorAbort verifies that an unrecognized follow-up key
// abandons a compound command without mutating the buffer, and that the
// next compound command starts fresh.
func TestPendingOperatorAbort(t *testing.T) {
	e, buf := newTestEngine("hello world")

	press(e, "d")
	assert.Equal(t, OpDelete, e.Pending())

	press(e, "f")
	assert.Equal(t, OpNone, e.Pending())
	assert.Equal(t, 0, e.Count())
	assert.Equal(t, "hello world", buf.Text())

	// A fresh dw still works.
	press(e, "dw")
	assert.Equal(t, []string{"world"}, buf.Lines())
}

// TestPendingOperatorAbortedBySymbolicKey verifies that arrows and other
// symbolic keys abort a pending operator rather than completing it.
func TestPendingOperatorAbortedBySymbolicKey(t *testing.T) {
	e, buf := newTestEngine("hello")

	press(e, "d")
	assert.True(t, pressKey(e, "left"))
	assert.Equal(t, OpNone, e.Pending())
	assert.Equal(t, "hello", buf.Text())

	press(e, "c")
	assert.True(t, pressKey(e, "home"))
	assert.Equal(t, OpNone, e.Pending())
	assert.Equal(t, "hello", buf.Text())
	assert.Equal(t, ModeNormal, e.Mode())
}

// TestEscapeClearsCountAndPending verifies that Escape in NORMAL mode
// resets the accumulator and pending operator.
func TestEscapeClearsCountAndPending(t *testing.T) {
	e, buf := newTestEngine("hello")

	press(e, "3d")
	assert.Equal(t, 3, e.Count())
	assert.Equal(t, OpDelete, e.Pending())

	assert.True(t, pressKey(e, "escape"))
	assert.Equal(t, 0, e.Count())
	assert.Equal(t, OpNone, e.Pending())
	assert.Equal(t, "hello", buf.Text())
}

// TestUnmappedNormalKeySwallowed verifies that unmapped printable keys in
// NORMAL mode are consumed so they never insert text.
func TestUnmappedNormalKeySwallowed(t *testing.T) {
	e, buf := newTestEngine("hello")

	assert.True(t, e.HandleKey(keys.Event{Sequence: "q"}))
	assert.True(t, e.HandleKey(keys.Event{Sequence: "Z"}))
	assert.Equal(t, "hello", buf.Text())
}

// TestSetModeClearsTransientState verifies that forcing a mode drops any
// half-typed command.
func TestSetModeClearsTransientState(t *testing.T) {
	e, _ := newTestEngine("hello")

	press(e, "2d")
	e.SetMode(ModeInsert)

	assert.Equal(t, 0, e.Count())
	assert.Equal(t, OpNone, e.Pending())
}

// TestMultiRuneInputIgnored verifies that pasted multi-rune input is not
// interpreted as a command.
func TestMultiRuneInputIgnored(t *testing.T) {
	e, buf := newTestEngine("hello")

	assert.False(t, e.HandleKey(keys.Event{Sequence: "dw"}))
	assert.Equal(t, "hello", buf.Text())

	// With an operator pending it aborts instead.
	press(e, "d")
	assert.True(t, e.HandleKey(keys.Event{Sequence: "xy"}))
	assert.Equal(t, OpNone, e.Pending())
	assert.Equal(t, "hello", buf.Text())
}

// TestUndoKey verifies that u restores the state before the last
// mutating command.
func TestUndoKey(t *testing.T) {
	e, buf := newTestEngine("hello world")

	press(e, "dw")
	require.Equal(t, []string{"world"}, buf.Lines())

	press(e, "u")
	assert.Equal(t, "hello world", buf.Text())

	// Nothing left to undo: no-op.
	press(e, "u")
	assert.Equal(t, "hello world", buf.Text())
}
