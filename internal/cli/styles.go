// Package cli provides styled terminal output and input helpers for the
// one-shot commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	blue   = lipgloss.Color("#2563EB")
	green  = lipgloss.Color("#10B981")
	amber  = lipgloss.Color("#F59E0B")
	red    = lipgloss.Color("#EF4444")
	sky    = lipgloss.Color("#60A5FA")
	border = lipgloss.Color("#333333")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(blue)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(blue)
	successStyle = lipgloss.NewStyle().Foreground(green)
	warningStyle = lipgloss.NewStyle().Foreground(amber)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	infoStyle    = lipgloss.NewStyle().Foreground(sky)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1)

	// TableHeaderStyle renders column headings in printed tables.
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string { return successStyle.Render("✓ " + message) }

// FormatError prefixes message with a cross.
func FormatError(message string) string { return errorStyle.Render("✗ " + message) }

// FormatWarning prefixes message with a bang.
func FormatWarning(message string) string { return warningStyle.Render("! " + message) }

// FormatInfo prefixes message with an info marker.
func FormatInfo(message string) string { return infoStyle.Render("i " + message) }

// FormatTitle renders a section heading.
func FormatTitle(title string) string { return titleStyle.Render("📦 " + title) }

// FormatPrompt renders an input label followed by a colon.
func FormatPrompt(label string) string { return promptStyle.Render(label + ": ") }

// RenderBox draws content under title inside a rounded border.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content))
}
