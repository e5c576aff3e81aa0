package vim

import (
	"unicode"

	"github.com/quillcli/quill/internal/keys"
	"github.com/quillcli/quill/internal/log"
)

// Buffer is the line-oriented text buffer the engine mutates. The engine
// references a buffer, it never constructs or disposes one; the hosting
// input surface owns its lifecycle.
type Buffer interface {
	// Lines returns the content as lines; treat the slice as read-only.
	Lines() []string
	// Cursor returns the 0-based (row, col) position; col is a rune index.
	Cursor() (row, col int)
	// Text returns the lines joined by "\n".
	Text() string

	MoveUp()
	MoveDown()
	// MoveToOffset places the cursor at a rune offset into Text().
	MoveToOffset(offset int)

	// Del deletes the rune under the cursor.
	Del()
	// Insert inserts text (possibly multi-line) at the cursor.
	Insert(text string)
	// Newline inserts a line break at the cursor.
	Newline()
	// ReplaceRangeByOffset replaces the rune range [start, end) with repl
	// and leaves the cursor at the end of the replacement.
	ReplaceRangeByOffset(start, end int, repl string)
	// SetText replaces the whole content; "" leaves one empty line.
	SetText(text string)

	// Checkpoint records an undo snapshot. Undo restores the latest one.
	Checkpoint()
	Undo() bool

	// HandleKey applies an insert-mode key directly to the buffer.
	HandleKey(ev keys.Event) bool
}

// LastCommand is the repeat record: the kind and effective count of the
// last buffer-mutating command. It deliberately carries no cursor or
// buffer state; repeat re-derives those at replay time.
type LastCommand struct {
	Kind  CommandKind
	Count int
}

// Engine is the modal editing engine. One engine drives one buffer, and
// key events are processed strictly in arrival order; a compound command
// spans exactly two consecutive events.
type Engine struct {
	buf      Buffer
	enabled  bool
	mode     Mode
	count    int
	pending  Operator
	last     *LastCommand
	onSubmit func(text string)
}

// New creates an engine driving buf, enabled and in NORMAL mode.
func New(buf Buffer) *Engine {
	return &Engine{buf: buf, enabled: true, mode: ModeNormal}
}

// SetEnabled toggles the engine. While disabled every key is reported
// unhandled and no engine state changes.
func (e *Engine) SetEnabled(enabled bool) {
	e.enabled = enabled
}

// Enabled reports whether the engine is processing keys.
func (e *Engine) Enabled() bool {
	return e.enabled
}

// Mode returns the current editing mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// SetMode forces the editing mode. The hosting surface uses this to start
// a fresh prompt in INSERT without synthesizing an 'i' keystroke.
func (e *Engine) SetMode(m Mode) {
	e.mode = m
	e.count = 0
	e.pending = OpNone
}

// Pending returns the operator awaiting its second key, or OpNone.
func (e *Engine) Pending() Operator {
	return e.pending
}

// Count returns the accumulated numeric prefix (0 when none).
func (e *Engine) Count() int {
	return e.count
}

// SetOnSubmit registers the callback invoked when a bare return submits
// the buffer content from INSERT mode.
func (e *Engine) SetOnSubmit(fn func(text string)) {
	e.onSubmit = fn
}

// HandleKey processes one key event. It returns true when the key was
// consumed and the hosting input pipeline must not process it further.
func (e *Engine) HandleKey(ev keys.Event) bool {
	if !e.enabled || ev.IsZero() {
		return false
	}
	if e.mode == ModeInsert {
		return e.handleInsertKey(ev)
	}
	return e.handleNormalKey(ev)
}

// handleInsertKey routes INSERT-mode keys: Escape leaves INSERT, a few
// keys are deferred to the host pipeline, bare return may submit, and
// everything else passes through to the buffer.
func (e *Engine) handleInsertKey(ev keys.Event) bool {
	if ev.Name == "escape" {
		e.mode = ModeNormal
		e.count = 0
		e.pending = OpNone
		// Leaving insert mode lands just before where you were.
		if row, col := e.buf.Cursor(); col > 0 {
			e.buf.MoveToOffset(offsetAt(e.buf.Lines(), row, col-1))
		}
		return true
	}

	// Deferred to the host pipeline for completion/paste/history.
	if ev.Name == "tab" || ev.Name == "up" || ev.Name == "down" {
		return false
	}
	if ev.Ctrl && ev.Sequence == "v" {
		return false
	}

	if ev.Name == "return" && !ev.Ctrl && !ev.Meta {
		if e.onSubmit == nil {
			return true
		}
		text := e.buf.Text()
		if text == "" {
			return false
		}
		e.buf.SetText("")
		e.buf.MoveToOffset(0)
		e.onSubmit(text)
		return true
	}

	return e.buf.HandleKey(ev)
}

// handleNormalKey interprets a NORMAL-mode key: digits accumulate the
// count, a pending operator consumes the key as its second half, and
// otherwise the key dispatches as a motion or command.
func (e *Engine) handleNormalKey(ev keys.Event) bool {
	if ev.Name == "escape" {
		e.count = 0
		e.pending = OpNone
		return true
	}

	if ev.Sequence == "" {
		// Symbolic key. Arrows act as the h/j/k/l motions; anything else
		// aborts a pending command or falls through to the host.
		switch ev.Name {
		case "left", "right", "up", "down":
			if e.pending != OpNone {
				e.abortPending()
				return true
			}
			e.arrowMotion(ev.Name)
			return true
		}
		if e.pending != OpNone {
			e.abortPending()
			return true
		}
		return false
	}

	if ev.Ctrl || ev.Meta {
		if e.pending != OpNone {
			e.abortPending()
			return true
		}
		return false
	}

	runes := []rune(ev.Sequence)
	if len(runes) != 1 {
		// Multi-rune input (bracketed paste) is not a command.
		if e.pending != OpNone {
			e.abortPending()
			return true
		}
		return false
	}
	r := runes[0]

	// Digits accumulate positionally, before and after an operator key
	// alike. A bare '0' with no count is the line-start motion instead.
	if r >= '1' && r <= '9' || (r == '0' && e.count > 0) {
		e.count = e.count*10 + int(r-'0')
		return true
	}

	if e.pending != OpNone {
		return e.completePending(r)
	}
	return e.dispatchNormal(r)
}

// dispatchNormal executes a NORMAL-mode key with no operator pending.
// Unmapped printable keys are swallowed so they never fall through to
// text insertion while in NORMAL mode.
func (e *Engine) dispatchNormal(r rune) bool {
	switch r {
	case 'h':
		for n := e.takeCount(); n > 0; n-- {
			e.moveLeft()
		}
	case 'l':
		for n := e.takeCount(); n > 0; n-- {
			e.moveRight()
		}
	case 'j':
		for n := e.takeCount(); n > 0; n-- {
			e.buf.MoveDown()
		}
		e.clampNormalCol()
	case 'k':
		for n := e.takeCount(); n > 0; n-- {
			e.buf.MoveUp()
		}
		e.clampNormalCol()
	case '0':
		e.count = 0
		row, _ := e.buf.Cursor()
		e.buf.MoveToOffset(lineStartOffset(e.buf.Lines(), row))
	case '$':
		e.count = 0
		e.moveToLineEnd()
	case '^':
		e.count = 0
		e.moveToFirstNonBlank()
	case 'w':
		e.motionRepeat(NextWordStart)
	case 'b':
		e.motionRepeat(PrevWordStart)
	case 'e':
		e.motionRepeat(WordEnd)
	case 'g':
		e.pending = OpGoto
	case 'G':
		e.gotoLine()
	case 'd':
		e.pending = OpDelete
	case 'c':
		e.pending = OpChange
	case 'i':
		e.count = 0
		e.mode = ModeInsert
	case 'I':
		e.count = 0
		e.moveToFirstNonBlank()
		e.mode = ModeInsert
	case 'a':
		e.count = 0
		e.appendAfterCursor()
	case 'A':
		e.count = 0
		row, _ := e.buf.Cursor()
		lines := e.buf.Lines()
		e.buf.MoveToOffset(offsetAt(lines, row, len([]rune(lines[row]))))
		e.mode = ModeInsert
	case 'o':
		e.count = 0
		e.openLineBelow()
	case 'O':
		e.count = 0
		e.openLineAbove()
	case 'x':
		e.execute(CmdDeleteChar, e.takeCount())
	case 'D':
		e.count = 0
		e.execute(CmdDeleteToEOL, 1)
	case 'C':
		e.count = 0
		e.execute(CmdChangeToEOL, 1)
	case '.':
		e.repeatLast()
	case 'u':
		e.count = 0
		if e.buf.Undo() {
			e.clampNormalCol()
		}
	default:
		e.count = 0
		log.Debug(log.CatVim, "Unmapped normal-mode key swallowed", "key", string(r))
	}
	return true
}

// completePending consumes the second key of a compound command. An
// unrecognized follow-up abandons the command without touching the
// buffer; the key is still handled.
func (e *Engine) completePending(r rune) bool {
	op := e.pending
	e.pending = OpNone

	switch op {
	case OpGoto:
		if r == 'g' {
			e.count = 0
			e.buf.MoveToOffset(0)
			return true
		}
	case OpDelete:
		switch r {
		case 'd':
			e.execute(CmdDeleteLine, e.takeCount())
			return true
		case 'w':
			e.execute(CmdDeleteWordForward, e.takeCount())
			return true
		case 'b':
			e.execute(CmdDeleteWordBack, e.takeCount())
			return true
		case 'e':
			e.execute(CmdDeleteWordEnd, e.takeCount())
			return true
		case 'j':
			e.execute(CmdDeleteDown, e.takeCount())
			return true
		case 'k':
			e.execute(CmdDeleteUp, e.takeCount())
			return true
		}
	case OpChange:
		switch r {
		case 'c':
			e.execute(CmdChangeLine, e.takeCount())
			return true
		case 'w':
			e.execute(CmdChangeWordForward, e.takeCount())
			return true
		case 'b':
			e.execute(CmdChangeWordBack, e.takeCount())
			return true
		case 'e':
			e.execute(CmdChangeWordEnd, e.takeCount())
			return true
		case 'h':
			e.execute(CmdChangeLeft, e.takeCount())
			return true
		case 'l':
			e.execute(CmdChangeRight, e.takeCount())
			return true
		case 'j':
			e.execute(CmdChangeDown, e.takeCount())
			return true
		case 'k':
			e.execute(CmdChangeUp, e.takeCount())
			return true
		}
	}

	e.count = 0
	log.Debug(log.CatVim, "Compound command abandoned", "operator", op.String(), "key", string(r))
	return true
}

// abortPending abandons a pending compound command without mutating the
// buffer.
func (e *Engine) abortPending() {
	e.pending = OpNone
	e.count = 0
}

// takeCount consumes the accumulated count and returns the effective
// multiplier (1 when no count was typed).
func (e *Engine) takeCount() int {
	n := e.count
	e.count = 0
	if n == 0 {
		n = 1
	}
	return n
}

// repeatLast re-executes the last mutating command against the buffer's
// current cursor and content. The record holds only (kind, count); all
// positional context is re-derived inside execute.
func (e *Engine) repeatLast() {
	e.count = 0
	if e.last == nil {
		return
	}
	e.execute(e.last.Kind, e.last.Count)
}

// ============================================================================
// Navigation
// ============================================================================

func (e *Engine) curOffset() int {
	row, col := e.buf.Cursor()
	return offsetAt(e.buf.Lines(), row, col)
}

// moveLeft moves one column left, wrapping to the end of the previous
// line at column 0.
func (e *Engine) moveLeft() {
	row, col := e.buf.Cursor()
	lines := e.buf.Lines()
	if col > 0 {
		e.buf.MoveToOffset(offsetAt(lines, row, col-1))
		return
	}
	if row > 0 {
		prevLen := len([]rune(lines[row-1]))
		e.buf.MoveToOffset(offsetAt(lines, row-1, max(0, prevLen-1)))
	}
}

// moveRight moves one column right, wrapping to the start of the next
// line at the last column. The cursor never rests past the last
// character of a line in NORMAL mode.
func (e *Engine) moveRight() {
	row, col := e.buf.Cursor()
	lines := e.buf.Lines()
	lineLen := len([]rune(lines[row]))
	if col < lineLen-1 {
		e.buf.MoveToOffset(offsetAt(lines, row, col+1))
		return
	}
	if row < len(lines)-1 {
		e.buf.MoveToOffset(lineStartOffset(lines, row+1))
	}
}

func (e *Engine) arrowMotion(name string) {
	switch name {
	case "left":
		for n := e.takeCount(); n > 0; n-- {
			e.moveLeft()
		}
	case "right":
		for n := e.takeCount(); n > 0; n-- {
			e.moveRight()
		}
	case "down":
		for n := e.takeCount(); n > 0; n-- {
			e.buf.MoveDown()
		}
		e.clampNormalCol()
	case "up":
		for n := e.takeCount(); n > 0; n-- {
			e.buf.MoveUp()
		}
		e.clampNormalCol()
	}
}

func (e *Engine) moveToLineEnd() {
	row, _ := e.buf.Cursor()
	lines := e.buf.Lines()
	lineLen := len([]rune(lines[row]))
	e.buf.MoveToOffset(offsetAt(lines, row, max(0, lineLen-1)))
}

func (e *Engine) moveToFirstNonBlank() {
	row, _ := e.buf.Cursor()
	lines := e.buf.Lines()
	col := 0
	for i, r := range []rune(lines[row]) {
		if !unicode.IsSpace(r) {
			col = i
			break
		}
	}
	e.buf.MoveToOffset(offsetAt(lines, row, col))
}

// motionRepeat applies a word motion count times from the current
// offset, stopping early once a step fails to advance.
func (e *Engine) motionRepeat(motion func(text string, offset int) int) {
	text := e.buf.Text()
	off := e.curOffset()
	for n := e.takeCount(); n > 0; n-- {
		next := motion(text, off)
		if next == off {
			break
		}
		off = next
	}
	e.buf.MoveToOffset(off)
	e.clampNormalCol()
}

// gotoLine implements G: with a count, go to the start of that 1-based
// row (clamped to the last row); without one, go to the last row.
func (e *Engine) gotoLine() {
	lines := e.buf.Lines()
	lastRow := len(lines) - 1
	row := lastRow
	if e.count > 0 {
		row = min(e.count-1, lastRow)
	}
	e.count = 0
	e.buf.MoveToOffset(lineStartOffset(lines, row))
}

func (e *Engine) appendAfterCursor() {
	row, col := e.buf.Cursor()
	lines := e.buf.Lines()
	if col < len([]rune(lines[row])) {
		e.buf.MoveToOffset(offsetAt(lines, row, col+1))
	}
	e.mode = ModeInsert
}

func (e *Engine) openLineBelow() {
	row, _ := e.buf.Cursor()
	lines := e.buf.Lines()
	e.buf.MoveToOffset(offsetAt(lines, row, len([]rune(lines[row]))))
	e.buf.Checkpoint()
	e.buf.Newline()
	e.mode = ModeInsert
}

func (e *Engine) openLineAbove() {
	row, _ := e.buf.Cursor()
	e.buf.MoveToOffset(lineStartOffset(e.buf.Lines(), row))
	e.buf.Checkpoint()
	e.buf.Newline()
	e.buf.MoveUp()
	e.mode = ModeInsert
}

// clampNormalCol enforces the NORMAL-mode column bound: the cursor may
// not rest past the last character of a non-empty line.
func (e *Engine) clampNormalCol() {
	row, col := e.buf.Cursor()
	lines := e.buf.Lines()
	lineLen := len([]rune(lines[row]))
	if lineLen > 0 && col >= lineLen {
		e.buf.MoveToOffset(offsetAt(lines, row, lineLen-1))
	}
}
