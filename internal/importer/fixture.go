// Package importer seeds reconciliations, expenses and line items from YAML
// fixture documents.
package importer

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/shopspring/decimal"
)

// ErrInvalidFixture is returned when a fixture document cannot be converted.
var ErrInvalidFixture = errors.New("invalid fixture")

var validate = validator.New()

// Fixture is one reconciliation with its expenses and line items.
type Fixture struct {
	Reconciliation ReconciliationDoc `yaml:"reconciliation"`
	Expenses       []ExpenseDoc      `yaml:"expenses" validate:"dive"`
	LineItems      []LineItemDoc     `yaml:"line_items" validate:"dive"`
}

// ReconciliationDoc is the YAML shape of a reconciliation.
type ReconciliationDoc struct {
	ID            string  `yaml:"id" validate:"required"`
	PropertyName  string  `yaml:"property_name"`
	Period        string  `yaml:"period" validate:"omitempty,datetime=2006-01"`
	ServiceType   string  `yaml:"service_type" validate:"required,oneof=cohosting full_service"`
	ManagementFee float64 `yaml:"management_fee" validate:"gte=0"`
	TotalRevenue  float64 `yaml:"total_revenue" validate:"gte=0"`
}

// ExpenseDoc is the YAML shape of an expense source record.
type ExpenseDoc struct {
	ID          string  `yaml:"id" validate:"required"`
	Description string  `yaml:"description" validate:"required"`
	Vendor      string  `yaml:"vendor"`
	IncurredOn  string  `yaml:"incurred_on" validate:"omitempty,datetime=2006-01-02"`
	Amount      float64 `yaml:"amount"`
}

// LineItemDoc is the YAML shape of a line item. Amounts keep their sign;
// the calculator uses absolute values.
type LineItemDoc struct {
	ID          string  `yaml:"id" validate:"required"`
	Type        string  `yaml:"type" validate:"required,oneof=visit expense pass_through_fee"`
	SourceID    string  `yaml:"source_id"`
	FeeType     string  `yaml:"fee_type" validate:"omitempty,oneof=cleaning_fee pet_fee"`
	Description string  `yaml:"description"`
	Amount      float64 `yaml:"amount"`
	Verified    bool    `yaml:"verified"`
	Excluded    bool    `yaml:"excluded"`
}

// LoadFile reads and parses a fixture file.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a fixture document.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.UnmarshalWithOptions(data, &fx, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	if err := validate.Struct(&fx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	return &fx, nil
}

// ToReconciliation converts the document into a draft reconciliation.
func (d ReconciliationDoc) ToReconciliation() (*model.Reconciliation, error) {
	st, err := model.ParseServiceType(d.ServiceType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	rec := &model.Reconciliation{
		ID:            d.ID,
		PropertyName:  d.PropertyName,
		Period:        d.Period,
		ServiceType:   st,
		Status:        model.StatusDraft,
		ManagementFee: decimal.NewFromFloat(d.ManagementFee),
		TotalRevenue:  decimal.NewFromFloat(d.TotalRevenue),
	}
	return rec, rec.Validate()
}

// ToExpense converts the document into an expense for propertyName.
func (d ExpenseDoc) ToExpense(propertyName string) (*model.Expense, error) {
	exp := &model.Expense{
		ID:           d.ID,
		PropertyName: propertyName,
		Description:  d.Description,
		Vendor:       d.Vendor,
		Amount:       decimal.NewFromFloat(d.Amount),
	}
	if d.IncurredOn != "" {
		on, err := time.Parse(time.DateOnly, d.IncurredOn)
		if err != nil {
			return nil, fmt.Errorf("%w: expense %s incurred_on %q", ErrInvalidFixture, d.ID, d.IncurredOn)
		}
		exp.IncurredOn = on
	}
	return exp, exp.Validate()
}

// ToLineItem converts the document into a line item of reconciliationID.
func (d LineItemDoc) ToLineItem(reconciliationID string) (model.LineItem, error) {
	t, err := model.ParseItemType(d.Type)
	if err != nil {
		return model.LineItem{}, fmt.Errorf("%w: line item %s: %w", ErrInvalidFixture, d.ID, err)
	}
	item := model.LineItem{
		ID:               d.ID,
		ReconciliationID: reconciliationID,
		Type:             t,
		SourceID:         d.SourceID,
		FeeType:          model.FeeType(d.FeeType),
		Description:      d.Description,
		Amount:           decimal.NewFromFloat(d.Amount),
		Verified:         d.Verified,
		Excluded:         d.Excluded,
	}
	if err := item.Validate(); err != nil {
		return model.LineItem{}, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	return item, nil
}
