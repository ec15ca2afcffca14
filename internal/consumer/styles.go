package consumer

import "github.com/charmbracelet/lipgloss"

// Styles holds the TUI styling definitions.
type Styles struct {
	Text      lipgloss.Style
	Notice    lipgloss.Style
	Error     lipgloss.Style
	StatusBar lipgloss.Style
	Prompt    lipgloss.Style
}

// DefaultStyles returns the stock palette.
func DefaultStyles() Styles {
	return Styles{
		Text:      lipgloss.NewStyle(),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")).Padding(0, 1),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	}
}

// PlainStyles renders everything unstyled.
func PlainStyles() Styles {
	return Styles{
		Text:      lipgloss.NewStyle(),
		Notice:    lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		StatusBar: lipgloss.NewStyle(),
		Prompt:    lipgloss.NewStyle(),
	}
}
