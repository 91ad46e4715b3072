// Package settlement computes the single settlement figure of a reconciliation
// from its line items. Every consumer of the figure (summary card, statement
// email, payout processor) goes through this package so they cannot disagree.
package settlement

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/shopspring/decimal"
)

// FallbackError is reported on a degraded result when the calculation failed.
const FallbackError = "Calculation failed: showing management fee only"

// Calculation errors.
var (
	ErrUnknownItemType    = errors.New("unknown line item type")
	ErrUnknownServiceType = errors.New("unknown service type")
)

// CalculationResult is the contract consumed by every settlement display and
// by the payout processor. Exactly one of DueFromOwner and PayoutToOwner is
// populated; the other is always zero.
type CalculationResult struct {
	VisitFees          decimal.Decimal `json:"visitFees"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	CleaningFees       decimal.Decimal `json:"cleaningFees"`
	PetFees            decimal.Decimal `json:"petFees"`
	TotalCharges       decimal.Decimal `json:"totalCharges"`
	DueFromOwner       decimal.Decimal `json:"dueFromOwner"`
	PayoutToOwner      decimal.Decimal `json:"payoutToOwner"`
	Error              string          `json:"error,omitempty"`
	DuplicatesDetected int             `json:"duplicatesDetected,omitempty"`
}

// Degraded reports whether r is the fallback result of a failed calculation.
func (r CalculationResult) Degraded() bool {
	return r.Error != ""
}

// Fallback is the fail-safe result used when the calculation cannot complete.
func Fallback(managementFee decimal.Decimal) CalculationResult {
	return CalculationResult{
		VisitFees:     decimal.Zero,
		TotalExpenses: decimal.Zero,
		CleaningFees:  decimal.Zero,
		PetFees:       decimal.Zero,
		TotalCharges:  managementFee,
		DueFromOwner:  managementFee,
		PayoutToOwner: decimal.Zero,
		Error:         FallbackError,
	}
}

// compute is the calculation Calculate guards; tests replace it.
var compute = Compute

// Calculate is the total form of Compute: it never fails, returning the
// Fallback result (with Error set) when Compute errors or panics.
func Calculate(items []model.LineItem, managementFee, totalRevenue decimal.Decimal, serviceType model.ServiceType) (result CalculationResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Settlement calculation panicked", "panic", r)
			result = Fallback(managementFee)
		}
	}()

	res, err := compute(items, managementFee, totalRevenue, serviceType)
	if err != nil {
		slog.Error("Settlement calculation failed", "error", err, "service_type", serviceType)
		return Fallback(managementFee)
	}
	return res
}

// Compute derives the charge components and the settlement figure. It does
// not modify items.
func Compute(items []model.LineItem, managementFee, totalRevenue decimal.Decimal, serviceType model.ServiceType) (CalculationResult, error) {
	if !serviceType.Valid() {
		return CalculationResult{}, fmt.Errorf("%w: %q", ErrUnknownServiceType, serviceType)
	}

	approved := Approved(items)
	for _, item := range approved {
		if !item.Type.Valid() {
			return CalculationResult{}, fmt.Errorf("%w: item %s has type %q", ErrUnknownItemType, item.ID, item.Type)
		}
	}

	duplicates := countDuplicates(approved)
	unique := Dedupe(approved)

	var result CalculationResult
	result.DuplicatesDetected = duplicates
	result.VisitFees = sumVisits(unique)
	result.TotalExpenses = sumExpenses(unique)
	result.CleaningFees, result.PetFees = sumPassThrough(unique)

	result.TotalCharges = decimal.Sum(managementFee,
		result.VisitFees,
		result.TotalExpenses,
		result.CleaningFees,
		result.PetFees,
	)

	switch serviceType {
	case model.ServiceFullService:
		// Negative payouts are meaningful: the owner owes money this month.
		result.PayoutToOwner = totalRevenue.Sub(result.TotalCharges)
		result.DueFromOwner = decimal.Zero
	default:
		result.DueFromOwner = result.TotalCharges
		result.PayoutToOwner = decimal.Zero
	}

	return result, nil
}

// Approved filters items down to those that count toward settlement.
func Approved(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		if item.Approved() {
			out = append(out, item)
		}
	}
	return out
}

// Dedupe keeps the first occurrence of each item_type:item_id key in input
// order. Items without a source reference are always kept.
func Dedupe(items []model.LineItem) []model.LineItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		key, ok := item.SourceKey()
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}

// countDuplicates is the watchdog: it counts extra copies per source key and
// logs each repeated key so upstream double entry is visible.
func countDuplicates(items []model.LineItem) int {
	counts := make(map[string]int, len(items))
	var order []string
	for _, item := range items {
		key, ok := item.SourceKey()
		if !ok {
			continue
		}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	duplicates := 0
	for _, key := range order {
		if n := counts[key]; n > 1 {
			duplicates += n - 1
			slog.Warn("Duplicate line items detected", "key", key, "count", n)
		}
	}
	return duplicates
}

func sumVisits(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Type == model.ItemVisit {
			total = total.Add(item.Amount.Abs())
		}
	}
	return total
}

func sumExpenses(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Type != model.ItemExpense || IsVisitRelated(item.Description) {
			continue
		}
		total = total.Add(item.Amount.Abs())
	}
	return total
}

// sumPassThrough splits pass-through fees into cleaning and pet buckets. An
// item whose description mentions both lands in both buckets.
func sumPassThrough(items []model.LineItem) (cleaning, pet decimal.Decimal) {
	cleaning, pet = decimal.Zero, decimal.Zero
	for _, item := range items {
		if item.Type != model.ItemPassThroughFee {
			continue
		}
		amount := item.Amount.Abs()
		if item.FeeType == model.FeeCleaning || isCleaningFee(item.Description) {
			cleaning = cleaning.Add(amount)
		}
		if item.FeeType == model.FeePet || isPetFee(item.Description) {
			pet = pet.Add(amount)
		}
	}
	return cleaning, pet
}
