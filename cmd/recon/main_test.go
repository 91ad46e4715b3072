package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ingoatl/propertycentral/internal/lifecycle"
	"github.com/ingoatl/propertycentral/internal/payout"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflowFixture = `
reconciliation:
  id: rec-maple
  property_name: Maple Cottage
  period: "2026-06"
  service_type: full_service
  management_fee: 200
  total_revenue: 3000
expenses:
  - id: exp-1
    description: AC repair
    amount: 30
line_items:
  - id: li-1
    type: visit
    source_id: visit-1
    description: Property visit - Dana
    amount: 50
  - id: li-2
    type: expense
    source_id: exp-1
    description: AC repair
    amount: 30
  - id: li-3
    type: pass_through_fee
    fee_type: cleaning_fee
    description: Guest cleaning
    amount: 75
  - id: li-4
    type: visit
    source_id: visit-1
    description: Property visit - Dana
    amount: 50
  - id: li-5
    type: expense
    source_id: exp-visit
    description: Visit fee for June
    amount: 40
`

func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--db", dbPath, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWorkflow(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "recon.db")
	fixture := filepath.Join(dir, "maple.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(workflowFixture), 0o600))

	out, err := runCLI(t, dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations completed")

	out, err = runCLI(t, dbPath, "import", "--no-progress", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported rec-maple: 1 expense(s), 5 line item(s)")

	out, err = runCLI(t, dbPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "rec-maple")

	// Nothing is verified yet, so only the management fee counts.
	out, err = runCLI(t, dbPath, "summary", "rec-maple")
	require.NoError(t, err)
	assert.Contains(t, out, "$2,800.00")

	_, err = runCLI(t, dbPath, "items", "verify", "li-1", "li-2", "li-3", "li-4", "li-5")
	require.NoError(t, err)

	out, err = runCLI(t, dbPath, "items", "list", "rec-maple")
	require.NoError(t, err)
	assert.Contains(t, out, "verified")

	out, err = runCLI(t, dbPath, "validate", "rec-maple")
	require.NoError(t, err)
	assert.Contains(t, out, "Visit fee for June")

	_, err = runCLI(t, dbPath, "approve", "rec-maple")
	require.ErrorIs(t, err, lifecycle.ErrValidationErrors)

	_, err = runCLI(t, dbPath, "items", "exclude", "li-5")
	require.NoError(t, err)

	out, err = runCLI(t, dbPath, "approve", "rec-maple", "--actor", "reviewer")
	require.NoError(t, err)
	assert.Contains(t, out, "approved")

	card, err := runCLI(t, dbPath, "summary", "rec-maple", "--save")
	require.NoError(t, err)
	assert.Contains(t, card, "Payout to Owner")
	assert.Contains(t, card, "$2,645.00")

	email, err := runCLI(t, dbPath, "preview", "rec-maple")
	require.NoError(t, err)
	assert.Contains(t, email, "Payout to Owner")
	assert.Contains(t, email, "$2,645.00")

	_, err = runCLI(t, dbPath, "preview", "rec-maple", "--mark-sent")
	require.NoError(t, err)

	out, err = runCLI(t, dbPath, "payout", "rec-maple", "--actor", "finance")
	require.NoError(t, err)
	assert.Contains(t, out, "Paid $2,645.00 to owner")

	_, err = runCLI(t, dbPath, "payout", "rec-maple")
	require.ErrorIs(t, err, payout.ErrAlreadyPaid)
	assert.Contains(t, formatCommandError(err), "already been paid out")

	_, err = runCLI(t, dbPath, "items", "exclude", "li-2")
	require.ErrorIs(t, err, lifecycle.ErrReconciliationLocked)
	assert.Contains(t, formatCommandError(err), "rec-maple is charged")

	_, err = runCLI(t, dbPath, "expense", "force-delete", "exp-1", "--reason", "")
	require.Error(t, err)

	out, err = runCLI(t, dbPath, "expense", "force-delete", "exp-1", "--reason", "duplicate invoice", "--actor", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted expense exp-1 ($30.00), 1 line item(s) from rec-maple")

	out, err = runCLI(t, dbPath, "audit", "rec-maple")
	require.NoError(t, err)
	assert.Contains(t, out, "status_changed")
	assert.Contains(t, out, "payout_completed")
	assert.Contains(t, out, "force_delete_expense")
	assert.Contains(t, out, "reason: duplicate invoice")
}

func TestCommandTree(t *testing.T) {
	want := []string{"migrate", "import", "list", "items", "summary", "validate",
		"approve", "preview", "expense", "payout", "audit", "version"}

	names := map[string]*cobra.Command{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = c
	}
	for _, name := range want {
		assert.Contains(t, names, name)
	}

	sub := map[string]bool{}
	for _, c := range names["items"].Commands() {
		sub[c.Name()] = true
	}
	for _, name := range []string{"list", "verify", "unverify", "exclude", "include"} {
		assert.True(t, sub[name], name)
	}
}

func TestExpenseForceDeleteFlags(t *testing.T) {
	cmd := expenseForceDeleteCmd()

	reason := cmd.Flag("reason")
	require.NotNil(t, reason)
	assert.Equal(t, "", reason.DefValue)
	assert.NotNil(t, cmd.Flag("actor"))
}
