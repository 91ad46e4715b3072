package settlement

import (
	"fmt"
	"strings"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/shopspring/decimal"
)

// Settlement labels shown next to the settlement figure.
const (
	LabelDueFromOwner  = "Due from Owner"
	LabelPayoutToOwner = "Payout to Owner"
)

// Settlement selects the label and figure the owner sees for serviceType.
func Settlement(result CalculationResult, serviceType model.ServiceType) (string, decimal.Decimal) {
	if serviceType == model.ServiceFullService {
		return LabelPayoutToOwner, result.PayoutToOwner
	}
	return LabelDueFromOwner, result.DueFromOwner
}

// NetToOwner expresses the settlement from the owner's side: the payout for
// full-service reconciliations, the negated amount due for co-hosting.
func NetToOwner(result CalculationResult, serviceType model.ServiceType) decimal.Decimal {
	if serviceType == model.ServiceFullService {
		return result.PayoutToOwner
	}
	return result.DueFromOwner.Neg()
}

// PayoutFormula chooses how the payout processor derives the payout amount.
type PayoutFormula string

const (
	// FormulaUnified uses Compute, the same figure the summary card shows.
	FormulaUnified PayoutFormula = "unified"
	// FormulaLegacy reproduces the historical processor formula, which skipped
	// pass-through fees and did not deduplicate by source record.
	FormulaLegacy PayoutFormula = "legacy"
)

// ParsePayoutFormula validates a configured formula name. Empty means unified.
func ParsePayoutFormula(s string) (PayoutFormula, error) {
	switch f := PayoutFormula(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormulaUnified:
		return FormulaUnified, nil
	case FormulaLegacy:
		return FormulaLegacy, nil
	default:
		return "", fmt.Errorf("unknown payout formula %q", s)
	}
}

// PayoutAmount returns the full-service payout for items under formula f.
func (f PayoutFormula) PayoutAmount(items []model.LineItem, managementFee, totalRevenue decimal.Decimal) (decimal.Decimal, error) {
	if f == FormulaLegacy {
		return LegacyPayoutAmount(items, managementFee, totalRevenue), nil
	}
	return PayoutAmount(items, managementFee, totalRevenue)
}

// PayoutAmount is the full-service settlement figure from Compute.
func PayoutAmount(items []model.LineItem, managementFee, totalRevenue decimal.Decimal) (decimal.Decimal, error) {
	result, err := Compute(items, managementFee, totalRevenue, model.ServiceFullService)
	if err != nil {
		return decimal.Zero, err
	}
	return result.PayoutToOwner, nil
}

// LegacyPayoutAmount is revenue minus management fee, visit fees and
// non-visit expenses over approved items, with no deduplication and no
// pass-through fees. It disagrees with Compute whenever a reconciliation has
// pass-through fees or duplicated source records.
func LegacyPayoutAmount(items []model.LineItem, managementFee, totalRevenue decimal.Decimal) decimal.Decimal {
	approved := Approved(items)
	charges := decimal.Sum(managementFee, sumVisits(approved), sumExpenses(approved))
	return totalRevenue.Sub(charges)
}
