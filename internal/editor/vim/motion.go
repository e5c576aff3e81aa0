package vim

import "unicode"

// ============================================================================
// Word Motion Functions
// ============================================================================
//
// All three motions are pure, total functions over (text, offset). Offsets
// are rune indices into the whole buffer text (lines joined by "\n"), so a
// motion can cross line boundaries. They never panic and always return a
// value within [0, len(text)].

// charClass partitions runes into the three classes word motions care about.
// A word character is an ASCII letter, digit, or underscore. Whitespace uses
// the Unicode predicate. Everything else is punctuation, which forms its own
// word-like runs distinct from word characters.
type charClass int

const (
	classWhitespace charClass = iota
	classWord
	classPunct
)

func classify(r rune) charClass {
	switch {
	case unicode.IsSpace(r):
		return classWhitespace
	case r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9'):
		return classWord
	default:
		return classPunct
	}
}

// NextWordStart returns the offset of the start of the next word after
// offset. When there is no next word, the "next word start" is defined as
// one past the end of the current trailing word, so a delete-word-forward
// on the final word still consumes to the end of the buffer.
func NextWordStart(text string, offset int) int {
	runes := []rune(text)
	n := len(runes)
	if offset >= n {
		return offset
	}

	i := offset
	switch classify(runes[i]) {
	case classWord:
		for i < n && classify(runes[i]) == classWord {
			i++
		}
	case classPunct:
		for i < n && classify(runes[i]) == classPunct {
			i++
		}
	}
	for i < n && classify(runes[i]) == classWhitespace {
		i++
	}

	if i < n {
		return i
	}

	// No next word: scan back over trailing whitespace to find the end of
	// the last word and land one past it.
	j := n - 1
	for j >= 0 && classify(runes[j]) == classWhitespace {
		j--
	}
	return max(offset+1, j+1)
}

// PrevWordStart returns the offset of the first character of the word or
// punctuation run preceding offset. Returns offset unchanged at 0.
func PrevWordStart(text string, offset int) int {
	if offset <= 0 {
		return offset
	}
	runes := []rune(text)
	n := len(runes)

	i := offset - 1
	if i >= n {
		i = n - 1
	}
	for i >= 0 && classify(runes[i]) == classWhitespace {
		i--
	}
	if i < 0 {
		return 0
	}

	c := classify(runes[i])
	for i >= 0 && classify(runes[i]) == c {
		i--
	}
	return i + 1
}

// WordEnd returns the offset of the last character of the word run at or
// after offset. Punctuation and whitespace before the next word are
// skipped. Returns offset unchanged when no word follows.
func WordEnd(text string, offset int) int {
	runes := []rune(text)
	n := len(runes)

	i := offset
	for i < n && classify(runes[i]) != classWord {
		i++
	}
	if i >= n {
		return offset
	}
	for i < n && classify(runes[i]) == classWord {
		i++
	}
	return max(offset, i-1)
}

// ============================================================================
// Offset Math
// ============================================================================
//
// The engine reads the buffer as lines but computes motions over the joined
// text, so it needs cheap conversions between (row, col) and rune offsets.

// lineStartOffset returns the rune offset of the first character of row.
func lineStartOffset(lines []string, row int) int {
	off := 0
	for i := 0; i < row && i < len(lines); i++ {
		off += len([]rune(lines[i])) + 1 // +1 for the newline
	}
	return off
}

// offsetAt returns the rune offset of (row, col), clamping col to the line.
func offsetAt(lines []string, row, col int) int {
	if row >= len(lines) {
		row = len(lines) - 1
	}
	if row < 0 {
		row = 0
	}
	n := len([]rune(lines[row]))
	if col > n {
		col = n
	}
	if col < 0 {
		col = 0
	}
	return lineStartOffset(lines, row) + col
}
