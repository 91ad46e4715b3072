package main

import (
	"fmt"

	"github.com/ingoatl/propertycentral/internal/cli"
	"github.com/ingoatl/propertycentral/internal/lifecycle"
	"github.com/ingoatl/propertycentral/internal/report"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var (
		markSent bool
		actor    string
	)

	cmd := &cobra.Command{
		Use:   "preview <reconciliation-id>",
		Short: "Render the owner statement email",
		Long: `Render the plain-text owner statement email for a reconciliation. The email
is not delivered; --mark-sent records that it went out and moves an approved
reconciliation to statement_sent.`,
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

			view, err := loadReconciliation(ctx, store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.EmailPreview(view.Reconciliation, view.Result))

			if !markSent {
				return nil
			}
			if view.Result.Degraded() {
				return fmt.Errorf("refusing to mark statement sent: %s", view.Result.Error)
			}
			if err := lifecycle.NewManager(store, cfg.AllowApproveWithErrors).MarkStatementSent(ctx, args[0], actor); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Statement marked as sent"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&markSent, "mark-sent", false, "Record that the statement was sent")
	cmd.Flags().StringVar(&actor, "actor", "", "Who sent the statement (recorded in the audit log)")

	return cmd
}
