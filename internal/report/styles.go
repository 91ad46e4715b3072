package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ingoatl/propertycentral/internal/cli"
)

// Styles contains the styling used by terminal reports.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style

	Card       lipgloss.Style
	Settlement lipgloss.Style
	Header     lipgloss.Style
	Cell       lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	s := &Styles{
		Title:    cli.TitleStyle.UnsetMargins(),
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Info:     cli.InfoStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),
		Header:   cli.TableHeaderStyle,
		Cell:     cli.TableCellStyle,
	}

	s.Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.SubtleColor).
		Padding(0, 1)

	s.Settlement = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PrimaryColor)

	return s
}
