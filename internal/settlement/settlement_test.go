package settlement

import (
	"testing"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlement_LabelSelection(t *testing.T) {
	result := CalculationResult{DueFromOwner: d("355"), PayoutToOwner: d("0")}

	label, amount := Settlement(result, model.ServiceCohosting)
	assert.Equal(t, LabelDueFromOwner, label)
	assertAmount(t, "355", amount)

	result = CalculationResult{DueFromOwner: d("0"), PayoutToOwner: d("2645")}
	label, amount = Settlement(result, model.ServiceFullService)
	assert.Equal(t, LabelPayoutToOwner, label)
	assertAmount(t, "2645", amount)
}

func TestNetToOwner(t *testing.T) {
	assertAmount(t, "-355", NetToOwner(CalculationResult{DueFromOwner: d("355")}, model.ServiceCohosting))
	assertAmount(t, "2645", NetToOwner(CalculationResult{PayoutToOwner: d("2645")}, model.ServiceFullService))
}

func TestPayoutFormulas_Diverge(t *testing.T) {
	items := scenarioItems()
	items = append(items, items[0]) // duplicated visit

	unified, err := FormulaUnified.PayoutAmount(items, d("200"), d("3000"))
	require.NoError(t, err)
	legacy, err := FormulaLegacy.PayoutAmount(items, d("200"), d("3000"))
	require.NoError(t, err)

	// Unified: 3000 - (200 + 50 + 30 + 75).
	assertAmount(t, "2645", unified)
	// Legacy: 3000 - (200 + 100 + 30), no cleaning fee and the visit counted twice.
	assertAmount(t, "2670", legacy)

	display := Calculate(items, d("200"), d("3000"), model.ServiceFullService)
	assertAmount(t, display.PayoutToOwner.String(), unified)
}

func TestParsePayoutFormula(t *testing.T) {
	f, err := ParsePayoutFormula("")
	require.NoError(t, err)
	assert.Equal(t, FormulaUnified, f)

	f, err = ParsePayoutFormula("LEGACY")
	require.NoError(t, err)
	assert.Equal(t, FormulaLegacy, f)

	_, err = ParsePayoutFormula("creative")
	assert.Error(t, err)
}

func TestIsVisitRelated(t *testing.T) {
	assert.True(t, IsVisitRelated("Visit Fee - June"))
	assert.True(t, IsVisitRelated("PROPERTY VISIT"))
	assert.False(t, IsVisitRelated("AC repair"))
	assert.False(t, IsVisitRelated("visitor parking"))

	kws := VisitKeywords()
	kws[0] = "mutated"
	assert.Equal(t, "visit fee", VisitKeywords()[0])
}
