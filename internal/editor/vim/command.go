package vim

import "github.com/quillcli/quill/internal/log"

// CommandKind identifies a buffer-mutating command. Together with a
// count it is everything needed to execute the command; every body
// re-reads cursor and content from the buffer at execution time, which
// is what makes the repeat record safe to replay after the cursor has
// moved.
type CommandKind int

const (
	CmdDeleteChar CommandKind = iota
	CmdDeleteLine
	CmdChangeLine
	CmdDeleteWordForward
	CmdDeleteWordBack
	CmdDeleteWordEnd
	CmdChangeWordForward
	CmdChangeWordBack
	CmdChangeWordEnd
	CmdDeleteToEOL
	CmdChangeToEOL
	CmdChangeLeft
	CmdChangeRight
	CmdDeleteDown
	CmdDeleteUp
	CmdChangeDown
	CmdChangeUp
)

// String returns the command's key notation.
func (k CommandKind) String() string {
	switch k {
	case CmdDeleteChar:
		return "x"
	case CmdDeleteLine:
		return "dd"
	case CmdChangeLine:
		return "cc"
	case CmdDeleteWordForward:
		return "dw"
	case CmdDeleteWordBack:
		return "db"
	case CmdDeleteWordEnd:
		return "de"
	case CmdChangeWordForward:
		return "cw"
	case CmdChangeWordBack:
		return "cb"
	case CmdChangeWordEnd:
		return "ce"
	case CmdDeleteToEOL:
		return "D"
	case CmdChangeToEOL:
		return "C"
	case CmdChangeLeft:
		return "ch"
	case CmdChangeRight:
		return "cl"
	case CmdDeleteDown:
		return "dj"
	case CmdDeleteUp:
		return "dk"
	case CmdChangeDown:
		return "cj"
	case CmdChangeUp:
		return "ck"
	default:
		return "?"
	}
}

// execute runs one mutating command. It is the single execution routine
// shared by direct dispatch and repeat: parameterized only by (kind,
// count), taking an undo checkpoint first and recording the repeat
// record last.
func (e *Engine) execute(kind CommandKind, count int) {
	if count < 1 {
		count = 1
	}
	e.buf.Checkpoint()

	switch kind {
	case CmdDeleteChar:
		e.deleteChars(count)
	case CmdDeleteLine:
		e.deleteLineRange(e.currentRow(), count, false)
	case CmdChangeLine:
		e.deleteLineRange(e.currentRow(), count, true)
	case CmdDeleteWordForward:
		e.deleteWordForward(count, false)
	case CmdChangeWordForward:
		e.deleteWordForward(count, true)
	case CmdDeleteWordBack:
		e.deleteWordBack(count, false)
	case CmdChangeWordBack:
		e.deleteWordBack(count, true)
	case CmdDeleteWordEnd:
		e.deleteWordEnd(count, false)
	case CmdChangeWordEnd:
		e.deleteWordEnd(count, true)
	case CmdDeleteToEOL:
		e.deleteToLineEnd(false)
	case CmdChangeToEOL:
		e.deleteToLineEnd(true)
	case CmdChangeLeft:
		e.changeLeft(count)
	case CmdChangeRight:
		e.changeRight(count)
	case CmdDeleteDown:
		row := e.currentRow()
		e.deleteLineRange(row, count+1, false)
	case CmdDeleteUp:
		row := e.currentRow()
		start := max(0, row-count)
		e.deleteLineRange(start, row-start+1, false)
	case CmdChangeDown:
		row := e.currentRow()
		e.deleteLineRange(row, count+1, true)
	case CmdChangeUp:
		row := e.currentRow()
		start := max(0, row-count)
		e.deleteLineRange(start, row-start+1, true)
	}

	e.last = &LastCommand{Kind: kind, Count: count}
	e.count = 0
	log.Debug(log.CatVim, "Command executed", "cmd", kind.String(), "count", count)
}

func (e *Engine) currentRow() int {
	row, _ := e.buf.Cursor()
	return row
}

// deleteChars implements x: delete count characters starting at the
// cursor, never crossing the line end. If the run included the line's
// last character the cursor steps one column left afterward.
func (e *Engine) deleteChars(count int) {
	row, col := e.buf.Cursor()
	lines := e.buf.Lines()
	lineLen := len([]rune(lines[row]))
	n := min(count, lineLen-col)
	if n <= 0 {
		return
	}

	off := offsetAt(lines, row, col)
	e.buf.ReplaceRangeByOffset(off, off+n, "")

	if col+n >= lineLen && col > 0 {
		e.buf.MoveToOffset(off - 1)
	}
}

// deleteLineRange deletes n whole lines starting at startRow. A range
// that reaches the last line absorbs the newline preceding it instead
// of a trailing one, so no dangling blank final line is left behind.
// With change set, the range collapses to a single empty line and the
// engine enters INSERT mode.
func (e *Engine) deleteLineRange(startRow, n int, change bool) {
	lines := e.buf.Lines()
	total := len(lines)
	if startRow >= total {
		startRow = total - 1
	}
	n = min(n, total-startRow)
	endRow := startRow + n - 1

	if change {
		// Replace the lines' content, interior newlines included, which
		// collapses the range into one empty line at startRow.
		start := lineStartOffset(lines, startRow)
		end := lineStartOffset(lines, endRow) + len([]rune(lines[endRow]))
		e.buf.ReplaceRangeByOffset(start, end, "")
		e.mode = ModeInsert
		return
	}

	if n >= total {
		e.buf.SetText("")
		e.buf.MoveToOffset(0)
		return
	}

	start := lineStartOffset(lines, startRow)
	var end int
	if endRow == total-1 {
		end = lineStartOffset(lines, endRow) + len([]rune(lines[endRow]))
		start-- // absorb the newline before the range
	} else {
		end = lineStartOffset(lines, endRow+1)
	}
	e.buf.ReplaceRangeByOffset(start, end, "")

	// Land at the start of the line that took the range's place.
	after := e.buf.Lines()
	row := min(startRow, len(after)-1)
	e.buf.MoveToOffset(lineStartOffset(after, row))
}

// deleteWordForward implements dw/cw: delete from the cursor to the
// start of the count-th next word. When the motion cannot advance (the
// cursor sits in the buffer's final word) it falls back to the end of
// the current word so the remainder is still consumed.
func (e *Engine) deleteWordForward(count int, change bool) {
	text := e.buf.Text()
	textLen := len([]rune(text))
	start := e.curOffset()

	end := start
	for i := 0; i < count; i++ {
		next := NextWordStart(text, end)
		if next == end {
			end = min(WordEnd(text, end)+1, textLen)
			break
		}
		end = next
	}

	if end > start {
		e.buf.ReplaceRangeByOffset(start, end, "")
	}
	e.finishChange(change)
}

// deleteWordBack implements db/cb: delete from the start of the count-th
// previous word up to the cursor.
func (e *Engine) deleteWordBack(count int, change bool) {
	text := e.buf.Text()
	cur := e.curOffset()

	start := cur
	for i := 0; i < count; i++ {
		prev := PrevWordStart(text, start)
		if prev == start {
			break
		}
		start = prev
	}

	if start < cur {
		e.buf.ReplaceRangeByOffset(start, cur, "")
	}
	e.finishChange(change)
}

// deleteWordEnd implements de/ce: delete through the inclusive end of
// the count-th word, advancing across word boundaries between
// iterations so multi-word spans are contiguous.
func (e *Engine) deleteWordEnd(count int, change bool) {
	text := e.buf.Text()
	textLen := len([]rune(text))
	cur := e.curOffset()

	pos := cur
	last := cur
	for i := 0; i < count; i++ {
		wordEnd := WordEnd(text, pos)
		last = wordEnd
		next := NextWordStart(text, wordEnd)
		if next == wordEnd {
			break
		}
		pos = next
	}

	end := min(last+1, textLen)
	if end > cur {
		e.buf.ReplaceRangeByOffset(cur, end, "")
	}
	e.finishChange(change)
}

// deleteToLineEnd implements D/C: delete from the cursor column through
// the end of the current line. Count is fixed at 1 for both.
func (e *Engine) deleteToLineEnd(change bool) {
	row, col := e.buf.Cursor()
	lines := e.buf.Lines()
	lineLen := len([]rune(lines[row]))
	if col < lineLen {
		off := offsetAt(lines, row, col)
		e.buf.ReplaceRangeByOffset(off, off+(lineLen-col), "")
	}
	e.finishChange(change)
}

// changeLeft implements ch: delete count characters left of the cursor,
// clamped at column 0, then enter INSERT.
func (e *Engine) changeLeft(count int) {
	_, col := e.buf.Cursor()
	n := min(count, col)
	if n > 0 {
		off := e.curOffset()
		e.buf.ReplaceRangeByOffset(off-n, off, "")
	}
	e.mode = ModeInsert
}

// changeRight implements cl: delete count characters at and right of
// the cursor, clamped at the line end, then enter INSERT.
func (e *Engine) changeRight(count int) {
	row, col := e.buf.Cursor()
	lines := e.buf.Lines()
	lineLen := len([]rune(lines[row]))
	n := min(count, lineLen-col)
	if n > 0 {
		off := offsetAt(lines, row, col)
		e.buf.ReplaceRangeByOffset(off, off+n, "")
	}
	e.mode = ModeInsert
}

// finishChange enters INSERT after a change command, or re-applies the
// NORMAL-mode column bound after a plain delete.
func (e *Engine) finishChange(change bool) {
	if change {
		e.mode = ModeInsert
		return
	}
	e.clampNormalCol()
}
