package main

import (
	"fmt"

	"github.com/ingoatl/propertycentral/internal/cli"
	"github.com/ingoatl/propertycentral/internal/lifecycle"
	"github.com/ingoatl/propertycentral/internal/report"
	"github.com/spf13/cobra"
)

func approveCmd() *cobra.Command {
	var (
		force bool
		actor string
	)

	cmd := &cobra.Command{
		Use:   "approve <reconciliation-id>",
		Short: "Approve a draft reconciliation",
		Long: `Validate a draft reconciliation and approve it. Approval is refused while
error-severity issues exist unless --force is given or approval.allow_errors
is set in the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := lifecycle.NewManager(store, cfg.AllowApproveWithErrors).
				Approve(ctx, lifecycle.ApproveRequest{ReconciliationID: args[0], Actor: actor, Force: force})
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatIssues(result.Issues))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Reconciliation "+args[0]+" approved"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Approve even when validation reports errors")
	cmd.Flags().StringVar(&actor, "actor", "", "Who is approving (recorded in the audit log)")

	return cmd
}
