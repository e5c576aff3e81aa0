// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Main/primary text
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Input placeholders

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Unfocused borders
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"} // Focused borders

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Success states
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors

	// Editing mode indicator colors
	VimNormalModeColor = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#54A0FF"} // NORMAL: blue
	VimInsertModeColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // INSERT: green

	// Transcript roles
	PromptEchoColor    = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"} // Submitted prompts
	ResponseTextColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Agent responses
	ErrorMessageColor  = StatusErrorColor
	PendingSpinnerText = TextMutedColor

	// Cursor cell rendered in reverse video
	CursorStyle = lipgloss.NewStyle().Reverse(true)
)
