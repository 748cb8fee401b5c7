package playui

import "github.com/charmbracelet/lipgloss"

// Theme groups the lipgloss styles for the play view. One style per event
// kind; presentation only, the transcript model carries no styling.
type Theme struct {
	Header    lipgloss.Style
	Status    lipgloss.Style
	Narration lipgloss.Style
	Dialogue  lipgloss.Style
	Action    lipgloss.Style
	Combat    lipgloss.Style
	Discovery lipgloss.Style
	System    lipgloss.Style
	Pending   lipgloss.Style
	Notice    lipgloss.Style
	ErrorText lipgloss.Style
	Confirm   lipgloss.Style
}

// DefaultTheme returns the standard fantasy-leaning palette.
func DefaultTheme() Theme {
	return Theme{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("183")),
		Status:    lipgloss.NewStyle().Faint(true),
		Narration: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Dialogue:  lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Italic(true),
		Action:    lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		Combat:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Discovery: lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		System:    lipgloss.NewStyle().Faint(true).Italic(true),
		Pending:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		ErrorText: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Confirm:   lipgloss.NewStyle().Foreground(lipgloss.Color("222")).Bold(true),
	}
}
