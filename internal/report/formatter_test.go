package report

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/money"
	"github.com/ingoatl/propertycentral/internal/settlement"
	"github.com/ingoatl/propertycentral/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func items() []model.LineItem {
	list := []model.LineItem{
		model.NewVisit("li-1", "visit-1", "Property visit - Dana", d("50")),
		model.NewExpense("li-2", "exp-1", "AC repair", d("30")),
		model.NewPassThroughFee("li-3", "", model.FeeCleaning, "Guest cleaning", d("75")),
		model.NewVisit("li-4", "visit-1", "Property visit - Dana", d("50")),
	}
	for i := range list {
		list[i].Verified = true
	}
	return list
}

func reconciliation(st model.ServiceType) *model.Reconciliation {
	return &model.Reconciliation{
		ID:            "rec-1",
		PropertyName:  "Maple Cottage",
		Period:        "2026-06",
		ServiceType:   st,
		Status:        model.StatusApproved,
		ManagementFee: d("200"),
		TotalRevenue:  d("3000"),
	}
}

func TestConsumersAgreeOnSettlementFigure(t *testing.T) {
	tests := []struct {
		name        string
		serviceType model.ServiceType
		wantLabel   string
		wantFigure  string
	}{
		{name: "cohosting", serviceType: model.ServiceCohosting, wantLabel: "Due from Owner", wantFigure: "$355.00"},
		{name: "full service", serviceType: model.ServiceFullService, wantLabel: "Payout to Owner", wantFigure: "$2,645.00"},
	}

	f := NewFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := reconciliation(tt.serviceType)
			result := settlement.Calculate(items(), rec.ManagementFee, rec.TotalRevenue, rec.ServiceType)

			label, figure := SettlementLine(result, rec.ServiceType)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantFigure, figure)

			card := f.SummaryCard(rec, result)
			email := EmailPreview(rec, result)
			for _, out := range []string{card, email} {
				assert.Contains(t, out, tt.wantLabel)
				assert.Contains(t, out, tt.wantFigure)
			}

			if tt.serviceType == model.ServiceFullService {
				amount, err := settlement.PayoutAmount(items(), rec.ManagementFee, rec.TotalRevenue)
				require.NoError(t, err)
				assert.Equal(t, figure, money.FormatCurrency(amount))
			}
		})
	}
}

func TestSummaryCard_Details(t *testing.T) {
	f := NewFormatter()
	rec := reconciliation(model.ServiceFullService)
	result := settlement.Calculate(items(), rec.ManagementFee, rec.TotalRevenue, rec.ServiceType)

	card := f.SummaryCard(rec, result)

	assert.Contains(t, card, "Maple Cottage")
	assert.Contains(t, card, "2026-06")
	assert.Contains(t, card, "Revenue")
	assert.Contains(t, card, "$3,000.00")
	assert.Contains(t, card, "Cleaning fees")
	assert.NotContains(t, card, "Pet fees")
	assert.Contains(t, card, "1 duplicate line item(s) ignored")
}

func TestSummaryCard_CohostingHidesRevenue(t *testing.T) {
	f := NewFormatter()
	rec := reconciliation(model.ServiceCohosting)
	result := settlement.Calculate(items(), rec.ManagementFee, rec.TotalRevenue, rec.ServiceType)

	assert.NotContains(t, f.SummaryCard(rec, result), "Revenue")
	assert.NotContains(t, EmailPreview(rec, result), "Revenue")
}

func TestSummaryCard_Fallback(t *testing.T) {
	f := NewFormatter()
	rec := reconciliation(model.ServiceCohosting)
	result := settlement.Fallback(rec.ManagementFee)

	card := f.SummaryCard(rec, result)

	assert.Contains(t, card, settlement.FallbackError)
	assert.Contains(t, card, "$200.00")
}

func TestSummaryCard_PayoutCompleted(t *testing.T) {
	f := NewFormatter()
	rec := reconciliation(model.ServiceFullService)
	paidAt := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	rec.Status = model.StatusCharged
	rec.PayoutStatus = model.PayoutCompleted
	rec.PayoutAt = &paidAt
	rec.PayoutReference = "PO-ABC123"
	rec.PayoutToOwner = decimal.NewNullDecimal(d("2645"))

	result := settlement.Calculate(items(), rec.ManagementFee, rec.TotalRevenue, rec.ServiceType)
	card := f.SummaryCard(rec, result)

	assert.Contains(t, card, "Payout completed: $2,645.00 (PO-ABC123)")
}

func TestSummaryCard_Nil(t *testing.T) {
	assert.Contains(t, NewFormatter().SummaryCard(nil, settlement.CalculationResult{}), "No reconciliation available")
}

func TestEmailPreview_Text(t *testing.T) {
	rec := reconciliation(model.ServiceCohosting)
	result := settlement.Calculate(items(), rec.ManagementFee, rec.TotalRevenue, rec.ServiceType)

	email := EmailPreview(rec, result)

	assert.True(t, strings.HasPrefix(email, "Subject: Owner statement for Maple Cottage · 2026-06\n"))
	assert.Contains(t, email, "Co-hosting statement for 2026-06")
	assert.Contains(t, email, "charged to your payment method")
	assert.NotContains(t, email, "\x1b[")
}

func TestFormatIssues(t *testing.T) {
	f := NewFormatter()

	t.Run("empty", func(t *testing.T) {
		out := f.FormatIssues(validation.GroupIssuesBySeverity(nil))
		assert.Contains(t, out, "No issues found")
	})

	t.Run("grouped", func(t *testing.T) {
		grouped := validation.GroupIssuesBySeverity([]validation.Issue{
			{
				Severity:        validation.SeverityError,
				Type:            validation.IssueVisitDoubleCount,
				Message:         "Expense looks like a visit charge",
				ItemID:          "li-9",
				SuggestedAction: validation.ActionExcludeItem,
			},
			{
				Severity: validation.SeverityInfo,
				Type:     validation.IssueOrphanCheckUnavailable,
				Message:  "Source record not checked",
			},
		})

		out := f.FormatIssues(grouped)

		assert.Contains(t, out, "1 error(s), 0 warning(s), 1 info")
		assert.Contains(t, out, "Errors")
		assert.NotContains(t, out, "Warnings")
		assert.Contains(t, out, "Expense looks like a visit charge [li-9]")
		assert.Contains(t, out, validation.ActionExcludeItem)
		assert.Less(t, strings.Index(out, "Errors"), strings.Index(out, "Info"))
	})
}

func TestFormatLineItems(t *testing.T) {
	f := NewFormatter()
	list := items()
	list[1].Excluded = true
	list[2].Verified = false

	out := f.FormatLineItems(list)

	assert.Contains(t, out, "AMOUNT")
	assert.Contains(t, out, "cleaning_fee")
	assert.Contains(t, out, "excluded")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "$50.00")
	assert.Contains(t, f.FormatLineItems(nil), "No line items")
}

func TestFormatAuditEntries(t *testing.T) {
	f := NewFormatter()
	entries := []model.AuditEntry{
		{
			CreatedAt:      time.Date(2026, 7, 2, 9, 30, 0, 0, time.UTC),
			Action:         model.ActionForceDeleteExpense,
			Actor:          "ops@example.com",
			Reason:         "duplicate invoice",
			PreviousValues: map[string]any{"expense_id": "exp-1", "amount": "30"},
		},
	}

	out := f.FormatAuditEntries(entries)

	assert.Contains(t, out, "2026-07-02 09:30:00  force_delete_expense  by ops@example.com")
	assert.Contains(t, out, "reason: duplicate invoice")
	assert.Contains(t, out, "before: amount=30 expense_id=exp-1")
	assert.Contains(t, f.FormatAuditEntries(nil), "No audit entries")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "li-1", n: 12, want: "li-1"},
		{in: "visit-2026-06-0001", n: 12, want: "visit-2026-…"},
		{in: "überprüfung-ä", n: 12, want: "überprüfung…"},
		{in: "清洁费清洁费清洁费清洁费清洁费", n: 5, want: "清洁费清…"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
