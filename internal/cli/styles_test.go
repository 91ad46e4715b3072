package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("payout committed"), "✓ payout committed")
	assert.Contains(t, FormatError("reconciliation is locked"), "✗ reconciliation is locked")
}

func TestTitleStyleDropsMarginForCards(t *testing.T) {
	assert.Equal(t, 1, TitleStyle.GetMarginBottom())
	assert.Equal(t, 0, TitleStyle.UnsetMargins().GetMarginBottom())
}
