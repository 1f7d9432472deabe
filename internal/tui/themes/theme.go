// Package themes holds the terminal color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a theme is built from.
type Palette struct {
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
	Foreground lipgloss.Color
	Dim        lipgloss.Color
	Border     lipgloss.Color
	Surface    lipgloss.Color
}

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Selected      lipgloss.Style
	Cursor        lipgloss.Style
	Box           lipgloss.Style
	Header        lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	Palette       Palette
}

// New builds a theme from a palette.
func New(p Palette) Theme {
	return Theme{
		Palette: p,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Dim),
		Normal: lipgloss.NewStyle().
			Foreground(p.Foreground),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Foreground),
		Muted: lipgloss.NewStyle().
			Foreground(p.Dim),
		Selected: lipgloss.NewStyle().
			Foreground(p.Success).
			Bold(true),
		Cursor: lipgloss.NewStyle().
			Background(p.Surface).
			Foreground(p.Foreground),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Border),
		StatusSuccess: lipgloss.NewStyle().
			Foreground(p.Success).
			Bold(true),
		StatusWarning: lipgloss.NewStyle().
			Foreground(p.Warning).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(p.Info),
		StatusPending: lipgloss.NewStyle().
			Foreground(p.Dim).
			Italic(true),
	}
}

// Default is the default theme.
var Default = New(Palette{
	Primary:    lipgloss.Color("#2563eb"),
	Accent:     lipgloss.Color("#60a5fa"),
	Success:    lipgloss.Color("#10b981"),
	Warning:    lipgloss.Color("#f59e0b"),
	Error:      lipgloss.Color("#ef4444"),
	Info:       lipgloss.Color("#3b82f6"),
	Foreground: lipgloss.Color("#fafafa"),
	Dim:        lipgloss.Color("#a3a3a3"),
	Border:     lipgloss.Color("#404040"),
	Surface:    lipgloss.Color("#262626"),
})

// HighContrast suits handheld scanners used outdoors.
var HighContrast = New(Palette{
	Primary:    lipgloss.Color("#ffffff"),
	Accent:     lipgloss.Color("#ffff00"),
	Success:    lipgloss.Color("#00ff00"),
	Warning:    lipgloss.Color("#ffaf00"),
	Error:      lipgloss.Color("#ff0000"),
	Info:       lipgloss.Color("#00ffff"),
	Foreground: lipgloss.Color("#ffffff"),
	Dim:        lipgloss.Color("#c0c0c0"),
	Border:     lipgloss.Color("#ffffff"),
	Surface:    lipgloss.Color("#0000af"),
})

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	if name == "high-contrast" {
		return HighContrast
	}
	return Default
}
