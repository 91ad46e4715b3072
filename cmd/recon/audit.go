package main

import (
	"fmt"

	"github.com/ingoatl/propertycentral/internal/report"
	"github.com/spf13/cobra"
)

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <reconciliation-id>",
		Short: "Show the audit trail of a reconciliation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.GetAuditEntries(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get audit entries: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatAuditEntries(entries))
			return nil
		},
	}
}
