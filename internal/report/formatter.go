// Package report renders settlement results for people: the terminal summary
// card, the owner statement email preview and validation issue listings.
// Every settlement figure goes through settlement.Settlement and
// money.FormatCurrency so all outputs show the same number.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/money"
	"github.com/ingoatl/propertycentral/internal/settlement"
	"github.com/ingoatl/propertycentral/internal/validation"
	"github.com/shopspring/decimal"
)

const labelWidth = 18

// Formatter renders reconciliation output for the terminal.
type Formatter struct {
	styles *Styles
}

// NewFormatter creates a formatter with default styles.
func NewFormatter() *Formatter {
	return &Formatter{
		styles: NewStyles(),
	}
}

// SettlementLine returns the label and formatted figure shown to the owner.
func SettlementLine(result settlement.CalculationResult, serviceType model.ServiceType) (string, string) {
	label, amount := settlement.Settlement(result, serviceType)
	return label, money.FormatCurrency(amount)
}

// SummaryCard renders the reconciliation summary card.
func (f *Formatter) SummaryCard(rec *model.Reconciliation, result settlement.CalculationResult) string {
	if rec == nil {
		return f.styles.Error.Render("No reconciliation available")
	}

	var lines []string
	lines = append(lines, f.styles.Title.Render(cardTitle(rec)))
	lines = append(lines, f.styles.Subtitle.Render(fmt.Sprintf("%s · %s", serviceLabel(rec.ServiceType), rec.Status)))

	if result.Degraded() {
		lines = append(lines, f.styles.Error.Render(result.Error))
	}

	lines = append(lines, "")
	if rec.ServiceType == model.ServiceFullService {
		lines = append(lines, row("Revenue", rec.TotalRevenue))
	}
	lines = append(lines,
		row("Management fee", rec.ManagementFee),
		row("Visit fees", result.VisitFees),
		row("Expenses", result.TotalExpenses),
	)
	if !result.CleaningFees.IsZero() {
		lines = append(lines, row("Cleaning fees", result.CleaningFees))
	}
	if !result.PetFees.IsZero() {
		lines = append(lines, row("Pet fees", result.PetFees))
	}
	lines = append(lines, row("Total charges", result.TotalCharges))

	label, figure := SettlementLine(result, rec.ServiceType)
	lines = append(lines, "", f.styles.Settlement.Render(fmt.Sprintf("%-*s %14s", labelWidth, label, figure)))

	if result.DuplicatesDetected > 0 {
		lines = append(lines, f.styles.Warning.Render(
			fmt.Sprintf("%d duplicate line item(s) ignored", result.DuplicatesDetected)))
	}
	if rec.PayoutCompleted() {
		lines = append(lines, f.styles.Success.Render(payoutNote(rec)))
	}

	return f.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// EmailPreview renders the plain-text owner statement email.
func EmailPreview(rec *model.Reconciliation, result settlement.CalculationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: Owner statement for %s\n\n", cardTitle(rec))
	fmt.Fprintf(&b, "Hello,\n\nHere is your %s statement for %s.\n\n", serviceLabel(rec.ServiceType), periodLabel(rec.Period))

	if rec.ServiceType == model.ServiceFullService {
		b.WriteString(row("Revenue", rec.TotalRevenue) + "\n")
	}
	b.WriteString(row("Management fee", rec.ManagementFee) + "\n")
	b.WriteString(row("Visit fees", result.VisitFees) + "\n")
	b.WriteString(row("Expenses", result.TotalExpenses) + "\n")
	if !result.CleaningFees.IsZero() {
		b.WriteString(row("Cleaning fees", result.CleaningFees) + "\n")
	}
	if !result.PetFees.IsZero() {
		b.WriteString(row("Pet fees", result.PetFees) + "\n")
	}
	b.WriteString(row("Total charges", result.TotalCharges) + "\n\n")

	label, figure := SettlementLine(result, rec.ServiceType)
	fmt.Fprintf(&b, "%-*s %14s\n\n", labelWidth, label, figure)

	if rec.ServiceType == model.ServiceFullService {
		b.WriteString("This amount will be remitted to your account on file.\n")
	} else {
		b.WriteString("This amount will be charged to your payment method on file.\n")
	}
	b.WriteString("\nThank you,\nProperty Management\n")

	return b.String()
}

// FormatIssues renders validation issues grouped by severity.
func (f *Formatter) FormatIssues(grouped validation.Grouped) string {
	total := len(grouped.Errors) + len(grouped.Warnings) + len(grouped.Info)
	if total == 0 {
		return f.styles.Success.Render("✓ No issues found")
	}

	var sections []string
	sections = append(sections, f.styles.Title.Render(fmt.Sprintf("Validation: %d error(s), %d warning(s), %d info",
		len(grouped.Errors), len(grouped.Warnings), len(grouped.Info))))

	sections = appendIssueGroup(sections, "Errors", grouped.Errors, f.styles.Error)
	sections = appendIssueGroup(sections, "Warnings", grouped.Warnings, f.styles.Warning)
	sections = appendIssueGroup(sections, "Info", grouped.Info, f.styles.Info)

	return strings.Join(sections, "\n")
}

func appendIssueGroup(sections []string, title string, issues []validation.Issue, style lipgloss.Style) []string {
	if len(issues) == 0 {
		return sections
	}
	sections = append(sections, "", style.Bold(true).Render(title))
	for _, issue := range issues {
		line := "  • " + issue.Message
		if issue.ItemID != "" {
			line += fmt.Sprintf(" [%s]", issue.ItemID)
		}
		sections = append(sections, style.Render(line))
		if issue.SuggestedAction != "" {
			sections = append(sections, "    → "+issue.SuggestedAction)
		}
	}
	return sections
}

// FormatLineItems renders the line items of a reconciliation as a table.
func (f *Formatter) FormatLineItems(items []model.LineItem) string {
	if len(items) == 0 {
		return f.styles.Subtle.Render("No line items")
	}

	header := f.styles.Header.Render(fmt.Sprintf("%-12s %-17s %-12s %12s  %-8s %s",
		"ID", "TYPE", "SOURCE", "AMOUNT", "STATE", "DESCRIPTION"))

	lines := []string{header}
	for _, item := range items {
		line := fmt.Sprintf("%-12s %-17s %-12s %12s  %-8s %s",
			truncate(item.ID, 12),
			itemTypeLabel(item),
			truncate(item.SourceID, 12),
			money.FormatCurrency(item.Amount),
			itemState(item),
			item.Description,
		)
		if item.Excluded {
			line = f.styles.Subtle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatAuditEntries renders an audit trail, oldest first.
func (f *Formatter) FormatAuditEntries(entries []model.AuditEntry) string {
	if len(entries) == 0 {
		return f.styles.Subtle.Render("No audit entries")
	}

	var lines []string
	for _, e := range entries {
		head := fmt.Sprintf("%s  %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action)
		if e.Actor != "" {
			head += "  by " + e.Actor
		}
		lines = append(lines, f.styles.Normal.Bold(true).Render(head))
		if e.Reason != "" {
			lines = append(lines, "  reason: "+e.Reason)
		}
		if len(e.PreviousValues) > 0 {
			lines = append(lines, "  before: "+formatValues(e.PreviousValues))
		}
		if len(e.NewValues) > 0 {
			lines = append(lines, "  after:  "+formatValues(e.NewValues))
		}
	}
	return strings.Join(lines, "\n")
}

func formatValues(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, values[k]))
	}
	return strings.Join(parts, " ")
}

func row(label string, amount decimal.Decimal) string {
	return fmt.Sprintf("%-*s %14s", labelWidth, label, money.FormatCurrency(amount))
}

func cardTitle(rec *model.Reconciliation) string {
	name := rec.PropertyName
	if name == "" {
		name = rec.ID
	}
	return fmt.Sprintf("%s · %s", name, periodLabel(rec.Period))
}

func periodLabel(period string) string {
	if period == "" {
		return "unspecified period"
	}
	return period
}

func serviceLabel(st model.ServiceType) string {
	switch st {
	case model.ServiceFullService:
		return "Full-service"
	case model.ServiceCohosting:
		return "Co-hosting"
	default:
		return string(st)
	}
}

func payoutNote(rec *model.Reconciliation) string {
	note := "Payout completed"
	if rec.PayoutToOwner.Valid {
		note += ": " + money.FormatCurrency(rec.PayoutToOwner.Decimal)
	}
	if rec.PayoutReference != "" {
		note += " (" + rec.PayoutReference + ")"
	}
	return note
}

func itemTypeLabel(item model.LineItem) string {
	if item.Type == model.ItemPassThroughFee && item.FeeType != "" {
		return string(item.FeeType)
	}
	return string(item.Type)
}

func itemState(item model.LineItem) string {
	switch {
	case item.Excluded:
		return "excluded"
	case item.Verified:
		return "verified"
	default:
		return "pending"
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
