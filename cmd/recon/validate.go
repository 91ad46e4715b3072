package main

import (
	"fmt"

	"github.com/ingoatl/propertycentral/internal/report"
	"github.com/ingoatl/propertycentral/internal/validation"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <reconciliation-id>",
		Short: "Check line items for data-quality issues",
		Long: `Run the validation checks over every line item of a reconciliation and
list the issues grouped by severity. Validation never changes data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := store.GetReconciliation(ctx, args[0]); err != nil {
				return err
			}
			items, err := store.GetLineItems(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get line items: %w", err)
			}

			grouped := validation.GroupIssuesBySeverity(validation.ValidateReconciliation(items))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), grouped)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatIssues(grouped))
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the grouped issues as JSON")

	return cmd
}
