// Package theme holds the colours and lipgloss styles shared by the CLI
// and the terminal UI.
package theme

import "github.com/charmbracelet/lipgloss"

var (
	Flame  = lipgloss.Color("202")
	Ember  = lipgloss.Color("214")
	Agree  = lipgloss.Color("42")
	Reject = lipgloss.Color("196")
	Skip   = lipgloss.Color("33")
	Muted  = lipgloss.Color("244")
	Ink    = lipgloss.Color("252")
)

// Styles is the set of styles the UI renders with.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Card      lipgloss.Style
	Modal     lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Agree     lipgloss.Style
	Disagree  lipgloss.Style
	Skip      lipgloss.Style
	Button    lipgloss.Style
	Label     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(Flame),
		Header:    lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(Muted),
		Tab:       lipgloss.NewStyle().Padding(0, 2).Foreground(Muted),
		ActiveTab: lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(Flame).Underline(true),
		Card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Ember).Padding(1, 2).Width(48),
		Modal:     lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(Flame).Padding(1, 3),
		Muted:     lipgloss.NewStyle().Foreground(Muted),
		Error:     lipgloss.NewStyle().Foreground(Reject).Bold(true),
		Success:   lipgloss.NewStyle().Foreground(Agree).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(Ember),
		Agree:     lipgloss.NewStyle().Foreground(Agree).Bold(true),
		Disagree:  lipgloss.NewStyle().Foreground(Reject).Bold(true),
		Skip:      lipgloss.NewStyle().Foreground(Skip).Bold(true),
		Button:    lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(Muted),
		Label:     lipgloss.NewStyle().Foreground(Ink).Bold(true),
	}
}
