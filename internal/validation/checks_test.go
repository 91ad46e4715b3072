package validation

import (
	"testing"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func issuesOfType(issues []Issue, typ IssueType) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Type == typ {
			out = append(out, issue)
		}
	}
	return out
}

func TestValidateReconciliation_VisitFeeExpense(t *testing.T) {
	items := []model.LineItem{
		model.NewExpense("li-1", "", "Visit Fee - June", amount("40")),
	}

	issues := ValidateReconciliation(items)
	grouped := GroupIssuesBySeverity(issues)

	require.Len(t, grouped.Errors, 1)
	assert.Equal(t, IssueVisitDoubleCount, grouped.Errors[0].Type)
	assert.Equal(t, "li-1", grouped.Errors[0].ItemID)
	assert.Equal(t, ActionExcludeItem, grouped.Errors[0].SuggestedAction)
}

func TestDetectVisitRelatedExpenses(t *testing.T) {
	verified := model.NewExpense("a", "exp-1", "hourly charge for pool check", amount("80"))
	verified.Verified = true
	unverified := model.NewExpense("b", "exp-2", "Property visit reimbursement", amount("25"))
	excluded := model.NewExpense("c", "exp-3", "Visit charge", amount("25"))
	excluded.Excluded = true
	plain := model.NewExpense("d", "exp-4", "Light bulbs", amount("12"))
	visit := model.NewVisit("e", "visit-1", "Property visit - Dana", amount("50"))

	issues := DetectVisitRelatedExpenses([]model.LineItem{verified, unverified, excluded, plain, visit})

	require.Len(t, issues, 2)
	assert.Equal(t, "a", issues[0].ItemID)
	assert.Equal(t, "b", issues[1].ItemID)
	for _, issue := range issues {
		assert.Equal(t, SeverityError, issue.Severity)
	}
}

func TestValidateVisitNames(t *testing.T) {
	tests := []struct {
		description string
		wantType    IssueType
		wantIssue   bool
	}{
		{description: "Property visit - Staff", wantType: IssueGenericVisitorName, wantIssue: true},
		{description: "Property visit - UNKNOWN", wantType: IssueGenericVisitorName, wantIssue: true},
		{description: "Property visit - Dana Whitfield", wantIssue: false},
		{description: "property visit - dana", wantIssue: false},
		{description: "Visit", wantType: IssueMissingVisitorName, wantIssue: true},
		{description: "Property visit", wantType: IssueMissingVisitorName, wantIssue: true},
		{description: "", wantType: IssueMissingVisitorName, wantIssue: true},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			items := []model.LineItem{model.NewVisit("v", "", tt.description, amount("50"))}

			issues := ValidateVisitNames(items)
			if !tt.wantIssue {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, tt.wantType, issues[0].Type)
			assert.Equal(t, SeverityWarning, issues[0].Severity)
		})
	}
}

func TestValidateReconciliation_GenericVisitorName(t *testing.T) {
	items := []model.LineItem{model.NewVisit("v", "", "Property visit - Staff", amount("50"))}

	grouped := GroupIssuesBySeverity(ValidateReconciliation(items))

	assert.Empty(t, grouped.Errors)
	require.Len(t, grouped.Warnings, 1)
	assert.Equal(t, IssueGenericVisitorName, grouped.Warnings[0].Type)
}

func TestDetectOrphanedItems_OnlyReportsInfo(t *testing.T) {
	items := []model.LineItem{
		model.NewVisit("v", "visit-1", "Property visit - Dana", amount("50")),
		model.NewExpense("e", "exp-1", "AC repair", amount("30")),
		model.NewExpense("e2", "", "Manual adjustment", amount("5")),
		model.NewPassThroughFee("p", "fee-1", model.FeeCleaning, "Cleaning", amount("75")),
	}

	issues := DetectOrphanedItems(items)

	require.Len(t, issues, 2)
	for _, issue := range issues {
		assert.Equal(t, SeverityInfo, issue.Severity)
		assert.Equal(t, IssueOrphanCheckUnavailable, issue.Type)
	}
	assert.Len(t, issuesOfType(ValidateReconciliation(items), IssueOrphanCheckUnavailable), 2)
}

func TestGroupIssuesBySeverity(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityWarning, Type: IssueMissingVisitorName, ItemID: "1"},
		{Severity: SeverityError, Type: IssueVisitDoubleCount, ItemID: "2"},
		{Severity: SeverityInfo, Type: IssueOrphanCheckUnavailable, ItemID: "3"},
		{Severity: SeverityWarning, Type: IssueGenericVisitorName, ItemID: "4"},
	}

	g := GroupIssuesBySeverity(issues)

	assert.True(t, g.HasErrors())
	require.Len(t, g.Warnings, 2)
	assert.Equal(t, "1", g.Warnings[0].ItemID)
	assert.Equal(t, "4", g.Warnings[1].ItemID)
	assert.Len(t, g.Errors, 1)
	assert.Len(t, g.Info, 1)

	empty := GroupIssuesBySeverity(nil)
	assert.False(t, empty.HasErrors())
	assert.NotNil(t, empty.Warnings)
}
