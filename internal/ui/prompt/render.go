package prompt

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quillcli/quill/internal/ui/styles"
)

// View renders the prompt as a bordered box with a block cursor.
func (m Model) View() string {
	border := styles.BorderDefaultColor
	if m.focused {
		border = styles.BorderFocusColor
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if m.width > 4 {
		box = box.Width(m.width - 2)
	}

	if m.buf.Text() == "" {
		return box.Render(m.renderPlaceholder())
	}
	return box.Render(m.renderContent())
}

func (m Model) renderPlaceholder() string {
	placeholder := m.config.Placeholder
	if !m.focused {
		return lipgloss.NewStyle().Foreground(styles.TextPlaceholderColor).Render(placeholder)
	}

	// Cursor sits on the first placeholder character.
	rest := ""
	cursor := " "
	if placeholder != "" {
		runes := []rune(placeholder)
		cursor = string(runes[0])
		rest = string(runes[1:])
	}
	return styles.CursorStyle.Render(cursor) +
		lipgloss.NewStyle().Foreground(styles.TextPlaceholderColor).Render(rest)
}

func (m Model) renderContent() string {
	row, col := m.buf.Cursor()
	text := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)

	var b strings.Builder
	for i, line := range m.buf.Lines() {
		if i > 0 {
			b.WriteString("\n")
		}
		if i != row || !m.focused {
			b.WriteString(text.Render(line))
			continue
		}
		b.WriteString(renderCursorLine(line, col, text))
	}
	return b.String()
}

// renderCursorLine draws one line with the cursor cell in reverse video.
// A cursor past the last character renders as a reversed space.
func renderCursorLine(line string, col int, text lipgloss.Style) string {
	runes := []rune(line)
	if col >= len(runes) {
		return text.Render(line) + styles.CursorStyle.Render(" ")
	}
	return text.Render(string(runes[:col])) +
		styles.CursorStyle.Render(string(runes[col])) +
		text.Render(string(runes[col+1:]))
}
