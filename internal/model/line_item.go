// Package model defines the reconciliation domain types shared by the settlement engine,
// the validation checks and the storage layer.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemType discriminates the line item variants.
type ItemType string

const (
	// ItemVisit is a property visit charged to the owner.
	ItemVisit ItemType = "visit"
	// ItemExpense is a maintenance or supply expense charged to the owner.
	ItemExpense ItemType = "expense"
	// ItemPassThroughFee is a guest-paid fee remitted to a third party.
	ItemPassThroughFee ItemType = "pass_through_fee"
)

// ItemTypes lists every valid line item variant.
var ItemTypes = []ItemType{ItemVisit, ItemExpense, ItemPassThroughFee}

// Valid reports whether t is one of the known variants.
func (t ItemType) Valid() bool {
	switch t {
	case ItemVisit, ItemExpense, ItemPassThroughFee:
		return true
	default:
		return false
	}
}

// ParseItemType converts a stored or user supplied value into an ItemType.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownItemType, s)
	}
	return t, nil
}

// FeeType discriminates pass-through fees.
type FeeType string

const (
	// FeeCleaning is a guest cleaning fee.
	FeeCleaning FeeType = "cleaning_fee"
	// FeePet is a guest pet fee.
	FeePet FeeType = "pet_fee"
)

// Line item validation errors.
var (
	ErrUnknownItemType   = errors.New("unknown line item type")
	ErrInvalidLineItem   = errors.New("invalid line item")
	ErrFeeTypeNotAllowed = errors.New("fee type is only valid on pass-through fees")
)

// LineItem is one financial entry attributed to a reconciliation.
// FeeType is only meaningful on pass-through fees; Validate rejects it elsewhere.
type LineItem struct {
	CreatedAt        time.Time
	Amount           decimal.Decimal
	ID               string
	ReconciliationID string
	Type             ItemType
	SourceID         string // originating visit or expense, empty when absent
	Description      string
	FeeType          FeeType
	Sequence         int64 // insertion order within the reconciliation
	Verified         bool
	Excluded         bool
}

// NewVisit builds a visit line item.
func NewVisit(id, sourceID, description string, amount decimal.Decimal) LineItem {
	return LineItem{ID: id, Type: ItemVisit, SourceID: sourceID, Description: description, Amount: amount}
}

// NewExpense builds an expense line item.
func NewExpense(id, sourceID, description string, amount decimal.Decimal) LineItem {
	return LineItem{ID: id, Type: ItemExpense, SourceID: sourceID, Description: description, Amount: amount}
}

// NewPassThroughFee builds a pass-through fee line item.
func NewPassThroughFee(id, sourceID string, feeType FeeType, description string, amount decimal.Decimal) LineItem {
	return LineItem{
		ID:          id,
		Type:        ItemPassThroughFee,
		SourceID:    sourceID,
		FeeType:     feeType,
		Description: description,
		Amount:      amount,
	}
}

// Approved is the single inclusion gate: reviewed as verified and not excluded.
func (li LineItem) Approved() bool {
	return li.Verified && !li.Excluded
}

// SourceKey returns the "item_type:item_id" composite key. The second return
// is false when the item carries no source reference.
func (li LineItem) SourceKey() (string, bool) {
	if li.SourceID == "" {
		return "", false
	}
	return string(li.Type) + ":" + li.SourceID, true
}

// Validate checks the variant invariants of a line item.
func (li *LineItem) Validate() error {
	if li == nil {
		return fmt.Errorf("%w: nil line item", ErrInvalidLineItem)
	}
	if strings.TrimSpace(li.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidLineItem)
	}
	if !li.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownItemType, li.Type)
	}
	if li.FeeType != "" && li.Type != ItemPassThroughFee {
		return fmt.Errorf("%w: item %s is a %s", ErrFeeTypeNotAllowed, li.ID, li.Type)
	}
	return nil
}
