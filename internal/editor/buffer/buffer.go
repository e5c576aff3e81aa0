// Package buffer implements the line-oriented text buffer the editing
// engine mutates: line storage, cursor, offset math, undo snapshots, and
// the insert-mode key handling for plain text entry.
package buffer

import (
	"strings"

	"github.com/quillcli/quill/internal/keys"
)

// maxUndoDepth bounds the undo stack; checkpoints beyond it drop the oldest.
const maxUndoDepth = 100

type snapshot struct {
	lines []string
	row   int
	col   int
}

// Buffer holds the editable text as lines plus a cursor.
//
// Invariants: there is always at least one line (clearing all content
// leaves one empty line), 0 <= row < len(lines), and 0 <= col <= line
// length in runes. The stricter NORMAL-mode column bound is the engine's
// concern, not the buffer's.
type Buffer struct {
	lines        []string
	row          int
	col          int
	preferredCol int
	undo         []snapshot
}

// New creates an empty buffer containing a single empty line.
func New() *Buffer {
	return &Buffer{lines: []string{""}}
}

// Lines returns the buffer content as lines. The slice is shared; callers
// must treat it as read-only.
func (b *Buffer) Lines() []string {
	return b.lines
}

// Cursor returns the current (row, col) position. col is a rune index.
func (b *Buffer) Cursor() (row, col int) {
	return b.row, b.col
}

// Text returns the full content with lines joined by newlines.
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// SetText replaces the entire content. An empty string leaves one empty
// line. The cursor is clamped to the new content.
func (b *Buffer) SetText(s string) {
	if s == "" {
		b.lines = []string{""}
	} else {
		b.lines = strings.Split(s, "\n")
	}
	b.clampCursor()
}

func (b *Buffer) lineLen(row int) int {
	return len([]rune(b.lines[row]))
}

// textLen returns the content length in runes, counting newlines.
func (b *Buffer) textLen() int {
	n := 0
	for i, line := range b.lines {
		n += len([]rune(line))
		if i < len(b.lines)-1 {
			n++
		}
	}
	return n
}

// offsetOf converts (row, col) to a rune offset into Text().
func (b *Buffer) offsetOf(row, col int) int {
	off := 0
	for i := 0; i < row; i++ {
		off += b.lineLen(i) + 1
	}
	return off + col
}

// posOf converts a rune offset into (row, col), clamping into bounds.
func (b *Buffer) posOf(offset int) (row, col int) {
	if offset < 0 {
		offset = 0
	}
	for row = 0; row < len(b.lines)-1; row++ {
		n := b.lineLen(row)
		if offset <= n {
			return row, offset
		}
		offset -= n + 1
	}
	return row, min(offset, b.lineLen(row))
}

// MoveToOffset places the cursor at the given rune offset, clamped to the
// content. Column intent for vertical movement is reset to the new column.
func (b *Buffer) MoveToOffset(offset int) {
	b.row, b.col = b.posOf(offset)
	b.preferredCol = b.col
}

// MoveUp moves the cursor one row up, preserving the preferred column.
func (b *Buffer) MoveUp() {
	if b.row == 0 {
		return
	}
	b.row--
	b.col = min(b.preferredCol, b.lineLen(b.row))
}

// MoveDown moves the cursor one row down, preserving the preferred column.
func (b *Buffer) MoveDown() {
	if b.row >= len(b.lines)-1 {
		return
	}
	b.row++
	b.col = min(b.preferredCol, b.lineLen(b.row))
}

// Insert inserts text (which may contain newlines) at the cursor and
// leaves the cursor after the inserted text.
func (b *Buffer) Insert(text string) {
	off := b.offsetOf(b.row, b.col)
	b.ReplaceRangeByOffset(off, off, text)
}

// Newline inserts a line break at the cursor.
func (b *Buffer) Newline() {
	b.Insert("\n")
}

// Del deletes the rune under the cursor. At the end of a line it joins the
// next line up; on the last line's end it is a no-op.
func (b *Buffer) Del() {
	off := b.offsetOf(b.row, b.col)
	if off >= b.textLen() {
		return
	}
	b.ReplaceRangeByOffset(off, off+1, "")
}

// DeleteBack deletes the rune before the cursor. At column 0 it joins the
// current line onto the previous one; at the buffer start it is a no-op.
func (b *Buffer) DeleteBack() {
	off := b.offsetOf(b.row, b.col)
	if off == 0 {
		return
	}
	b.ReplaceRangeByOffset(off-1, off, "")
}

// ReplaceRangeByOffset replaces the rune range [start, end) with repl and
// leaves the cursor just after the replacement (at start for a deletion).
// Out-of-range offsets are clamped; an inverted range is normalized.
func (b *Buffer) ReplaceRangeByOffset(start, end int, repl string) {
	runes := []rune(b.Text())
	n := len(runes)
	start = max(0, min(start, n))
	end = max(0, min(end, n))
	if start > end {
		start, end = end, start
	}

	text := string(runes[:start]) + repl + string(runes[end:])
	b.lines = strings.Split(text, "\n")
	b.row, b.col = b.posOf(start + len([]rune(repl)))
	b.preferredCol = b.col
}

// Checkpoint records the current content and cursor for Undo. The engine
// takes a checkpoint before every mutating command.
func (b *Buffer) Checkpoint() {
	snap := snapshot{lines: make([]string, len(b.lines)), row: b.row, col: b.col}
	copy(snap.lines, b.lines)
	b.undo = append(b.undo, snap)
	if len(b.undo) > maxUndoDepth {
		b.undo = b.undo[1:]
	}
}

// Undo restores the most recent checkpoint. Returns false when there is
// nothing to undo.
func (b *Buffer) Undo() bool {
	if len(b.undo) == 0 {
		return false
	}
	snap := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.lines = snap.lines
	b.row, b.col = snap.row, snap.col
	b.preferredCol = b.col
	return true
}

// HandleKey applies an insert-mode key to the buffer: printable input,
// backspace/delete, horizontal arrows, home/end, and modified returns.
// Returns false for keys the buffer does not own (bare return, tab,
// vertical arrows) so the host pipeline can apply its own semantics.
func (b *Buffer) HandleKey(ev keys.Event) bool {
	switch ev.Name {
	case "backspace":
		b.DeleteBack()
		return true
	case "delete":
		b.Del()
		return true
	case "left":
		if b.col > 0 {
			b.col--
		}
		b.preferredCol = b.col
		return true
	case "right":
		if b.col < b.lineLen(b.row) {
			b.col++
		}
		b.preferredCol = b.col
		return true
	case "home":
		b.col = 0
		b.preferredCol = 0
		return true
	case "end":
		b.col = b.lineLen(b.row)
		b.preferredCol = b.col
		return true
	case "return":
		// Only modified returns insert a line break; a bare return
		// belongs to the submit path upstream.
		if ev.Ctrl || ev.Meta {
			b.Newline()
			return true
		}
		return false
	}

	if ev.Sequence != "" && !ev.Ctrl && !ev.Meta {
		b.Insert(ev.Sequence)
		return true
	}
	return false
}

func (b *Buffer) clampCursor() {
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
	if b.row >= len(b.lines) {
		b.row = len(b.lines) - 1
	}
	if b.row < 0 {
		b.row = 0
	}
	if n := b.lineLen(b.row); b.col > n {
		b.col = n
	}
	if b.col < 0 {
		b.col = 0
	}
}
