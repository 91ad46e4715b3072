package main

import (
	"fmt"
	"strings"

	"github.com/ingoatl/propertycentral/internal/audit"
	"github.com/ingoatl/propertycentral/internal/cli"
	"github.com/ingoatl/propertycentral/internal/money"
	"github.com/spf13/cobra"
)

func expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage expense records",
	}

	cmd.AddCommand(expenseForceDeleteCmd())

	return cmd
}

func expenseForceDeleteCmd() *cobra.Command {
	var (
		reason string
		actor  string
	)

	cmd := &cobra.Command{
		Use:   "force-delete <expense-id>",
		Short: "Delete an expense even if an approved reconciliation references it",
		Long: `Delete an expense and every line item that references it. An audit entry
with a snapshot of the removed data is written for each affected
reconciliation before anything is deleted. A reason is required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := audit.NewDeleter(store).ForceDeleteExpense(ctx, audit.ForceDeleteRequest{
				ExpenseID: args[0],
				Reason:    reason,
				Actor:     actor,
			})
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Deleted expense %s (%s), %d line item(s)",
				result.Expense.ID, money.FormatCurrency(result.Expense.Amount), result.LineItemsDeleted)
			if len(result.ReconciliationIDs) > 0 {
				msg += " from " + strings.Join(result.ReconciliationIDs, ", ")
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Why the expense is being deleted (required)")
	cmd.Flags().StringVar(&actor, "actor", "", "Who is deleting (recorded in the audit log)")

	return cmd
}
