// Package cli holds the terminal palette shared by the recon commands and reports.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor highlights settlement figures and titles.
	PrimaryColor = lipgloss.Color("#5B8DEF")
	// SubtleColor is used for borders and secondary text.
	SubtleColor = lipgloss.Color("#666666")

	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)
	SubtitleStyle = lipgloss.NewStyle().Foreground(SubtleColor)
	SubtleStyle   = lipgloss.NewStyle().Foreground(SubtleColor).Italic(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB68B"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E8B339"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5534B")).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8AB4F8"))

	// TableHeaderStyle underlines the header row of line item and audit tables.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(SubtleColor)
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return SuccessStyle.Render("✓ " + message)
}

// FormatError prefixes message with a cross.
func FormatError(message string) string {
	return ErrorStyle.Render("✗ " + message)
}
