// Package validation scans reconciliation line items for data-quality
// problems a reviewer should resolve before approving the settlement figure.
// Issues are advisory data, never errors.
package validation

// Severity ranks how much an issue undermines the settlement figure.
type Severity string

const (
	// SeverityError means the figure cannot be trusted until the issue is fixed.
	SeverityError Severity = "error"
	// SeverityWarning means the data is usable but should be cleaned up.
	SeverityWarning Severity = "warning"
	// SeverityInfo is informational only.
	SeverityInfo Severity = "info"
)

// IssueType names the check that produced an issue.
type IssueType string

const (
	// IssueVisitDoubleCount flags an expense that is really a visit charge.
	IssueVisitDoubleCount IssueType = "visit_double_count"
	// IssueMissingVisitorName flags a visit whose description lacks a visitor.
	IssueMissingVisitorName IssueType = "missing_visitor_name"
	// IssueGenericVisitorName flags a visit attributed to "staff" or "unknown".
	IssueGenericVisitorName IssueType = "generic_visitor_name"
	// IssueOrphanCheckUnavailable notes that the source record could not be checked.
	IssueOrphanCheckUnavailable IssueType = "orphan_check_unavailable"
)

// Issue is a single finding about a reconciliation's line items.
type Issue struct {
	Severity        Severity  `json:"severity"`
	Type            IssueType `json:"type"`
	Message         string    `json:"message"`
	ItemID          string    `json:"itemId,omitempty"`
	SuggestedAction string    `json:"suggestedAction,omitempty"`
}

// Grouped partitions issues by severity for display.
type Grouped struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Info     []Issue `json:"info"`
}

// HasErrors reports whether any error-severity issue is present.
func (g Grouped) HasErrors() bool {
	return len(g.Errors) > 0
}

// GroupIssuesBySeverity partitions issues, preserving their order within each group.
func GroupIssuesBySeverity(issues []Issue) Grouped {
	g := Grouped{
		Errors:   []Issue{},
		Warnings: []Issue{},
		Info:     []Issue{},
	}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			g.Errors = append(g.Errors, issue)
		case SeverityWarning:
			g.Warnings = append(g.Warnings, issue)
		default:
			g.Info = append(g.Info, issue)
		}
	}
	return g
}
