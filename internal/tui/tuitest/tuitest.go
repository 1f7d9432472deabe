// Package tuitest builds key messages and inspects rendered views for
// terminal UI tests.
package tuitest

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Common keys.
var (
	Enter     = tea.KeyMsg{Type: tea.KeyEnter}
	Esc       = tea.KeyMsg{Type: tea.KeyEsc}
	Tab       = tea.KeyMsg{Type: tea.KeyTab}
	Up        = tea.KeyMsg{Type: tea.KeyUp}
	Down      = tea.KeyMsg{Type: tea.KeyDown}
	Space     = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	Backspace = tea.KeyMsg{Type: tea.KeyBackspace}
	CtrlC     = tea.KeyMsg{Type: tea.KeyCtrlC}
	CtrlO     = tea.KeyMsg{Type: tea.KeyCtrlO}
)

// Runes types s as a single key message.
func Runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// Type returns one key message per rune of s.
func Type(s string) []tea.KeyMsg {
	keys := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		keys = append(keys, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return keys
}

// Plain strips styling from a rendered view.
func Plain(view string) string {
	return ansi.Strip(view)
}

// ContainsInOrder reports whether view holds every want string, each after
// the previous one.
func ContainsInOrder(view string, want ...string) bool {
	rest := Plain(view)
	for _, w := range want {
		i := strings.Index(rest, w)
		if i < 0 {
			return false
		}
		rest = rest[i+len(w):]
	}
	return true
}

// Lines returns the non-blank lines of a plain view, trimmed.
func Lines(view string) []string {
	var lines []string
	for _, line := range strings.Split(Plain(view), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
