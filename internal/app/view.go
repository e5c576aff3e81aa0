package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quillcli/quill/internal/ui/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	var sections []string

	if transcript := m.renderTranscript(); transcript != "" {
		sections = append(sections, transcript)
	}
	sections = append(sections, m.prompt.View())
	if m.services.Config.UI.ShowStatusBar {
		sections = append(sections, m.renderStatusBar())
	}

	return strings.Join(sections, "\n")
}

func (m Model) renderTranscript() string {
	echo := lipgloss.NewStyle().Foreground(styles.PromptEchoColor)
	response := lipgloss.NewStyle().Foreground(styles.ResponseTextColor)
	errStyle := lipgloss.NewStyle().Foreground(styles.ErrorMessageColor)
	pending := lipgloss.NewStyle().Foreground(styles.PendingSpinnerText)

	var b strings.Builder
	for i, entry := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(echo.Render("> " + entry.prompt))
		b.WriteString("\n")
		switch {
		case entry.pending:
			b.WriteString(pending.Render("..."))
		case entry.err != nil:
			b.WriteString(errStyle.Render("error: " + entry.err.Error()))
		default:
			b.WriteString(response.Render(entry.response))
		}
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	muted := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	parts := []string{}
	if indicator := m.prompt.ModeIndicator(); indicator != "" {
		parts = append(parts, indicator)
	}
	parts = append(parts, muted.Render(fmt.Sprintf("agent: %s", m.services.Runner.Name())))
	if m.services.Repo != nil {
		parts = append(parts, muted.Render("history: on"))
	}
	parts = append(parts, muted.Render("ctrl+g vim · ctrl+c quit"))

	return strings.Join(parts, muted.Render("  |  "))
}
